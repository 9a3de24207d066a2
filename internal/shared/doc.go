// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides log capture and input fixtures
// for the pipeline tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	testutil.WriteEDAFixture(t, cfg.ResolvePaths())
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "could not be parsed")
package shared
