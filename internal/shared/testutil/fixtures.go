package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cobranza/internal/config"
	"cobranza/internal/model"
)

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteEDAFixture writes the five catalogs and the 2022 and 2023
// transaction files under paths, using the default file names.
//
// The fixture exercises the join edge cases: keys written as "2.0" and
// "7.0", one unparseable charge date and a transaction for bank 9, which
// is absent from the bank catalog. The resulting summary has three rows:
// 2022/BANORTE 200 over 2 attempts, 2022/SANTANDER 0 over 1 attempt and
// 2023/BANORTE 1000000.
func WriteEDAFixture(t *testing.T, paths *config.Paths) {
	t.Helper()
	WriteFile(t, paths.CatalogFile("CatBanco.csv"), "IdBanco,Nombre\n1,BANORTE\n2.0,SANTANDER\n3,HSBC\n")
	WriteFile(t, paths.CatalogFile("CatRespuestaBancos.csv"), "IdRespuestaBanco,Descripcion\n0,Cobro exitoso\n4,Fondos insuficientes\n")
	WriteFile(t, paths.CatalogFile("CatEmisora.csv"), "IdEmisora,Nombre\n7,EMISORA A\n")
	WriteFile(t, paths.CatalogFile("ListaCobro.csv"), "IdListaCobro,FechaCreacion\n100,2022-01-01\n")
	WriteFile(t, paths.CatalogFile("ListaCobroEmisora.csv"), "IdListaCobro,IdEmisora\n100,7.0\n")

	WriteFile(t, paths.TransactionFile(2022),
		"IdBanco,IdRespuestaBanco,IdListaCobro,MontoCobrado,FechaCobroBanco\n"+
			"1,0,100,150.5,15/01/2022\n"+
			"2,4,100,0,20/02/2022\n"+
			"1,0,100,49.5,no es fecha\n")
	WriteFile(t, paths.TransactionFile(2023),
		"IdBanco,IdRespuestaBanco,IdListaCobro,MontoCobrado,FechaCobroBanco\n"+
			"1.0,0,100,1000000,01/03/2023\n"+
			"9,4,100,5,02/03/2023\n")
}

// ShardSpec sizes the clustered training shards written by WriteShards
type ShardSpec struct {
	Shards       int
	RowsPerShard int
	Credits      int
}

// WriteShards writes spec.Shards files named cluster_<n>.csv into dir with
// every model feature plus montoCobrado and costo_transaccion. The target
// is 500 when hora_cos >= 3 and 50 otherwise, so a model can learn it.
func WriteShards(t *testing.T, dir string, spec ShardSpec) {
	t.Helper()
	header := append(append([]string{}, model.FeatureColumns...), model.ColTarget, model.ColCost)
	for shard := 0; shard < spec.Shards; shard++ {
		var b strings.Builder
		b.WriteString(strings.Join(header, ",") + "\n")
		for i := 0; i < spec.RowsPerShard; i++ {
			n := shard*spec.RowsPerShard + i
			hour := n % 6
			amount := 50
			if hour >= 3 {
				amount = 500
			}
			// idListaCobro, idCredito, consecutivoCobro, idBanco, montoExigible,
			// montoCobrar, idRespuestaBanco, idEmisora, TipoEnvio, hora_cos,
			// diaEnvioCobro_cos, diaCreacion_cos, target, cost
			fmt.Fprintf(&b, "%d,%d,%d,1,1000,%d,0,7,%d,%d,0.5,0.25,%d,1.5\n",
				1000+n, n%spec.Credits, n%4, 900+n%3, n%2, hour, amount)
		}
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("cluster_%d.csv", shard)), b.String())
	}
}
