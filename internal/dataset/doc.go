// Package dataset provides the in-memory tabular model shared by the
// cobranza pipelines.
//
// A Table is an ordered list of lowercased column labels and rows of
// string cells. Cells stay textual until a consumer asks for a typed view
// through Float, Int or Decimal, where an empty or unparseable cell is
// reported as missing. Join keys are normalized with NormalizeKey so that
// integer ids read as 1, 1.0 or "1" compare equal.
//
// The package also implements CSV reading (ReadCSV), vertical
// concatenation (Concat) and the pandas-style left join (LeftJoin) used by
// the EDA pipeline.
package dataset
