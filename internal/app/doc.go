// Package app provides command initialization and lifecycle management for
// the batch commands. It handles the orchestration of configuration loading,
// logging, telemetry and the pipeline runner.
//
// # Initialization Flow
//
// The typical sequence for every command:
//
//  1. Load configuration from defaults, YAML and environment
//  2. Initialize logging and assign a run id
//  3. Initialize tracing and metrics
//  4. Build the pipeline runner and optional publisher
//  5. Run the command until it finishes or is interrupted
//  6. Write the run manifest, flush metrics and shut down
//
// # Usage
//
//	a, err := app.NewApplication(pipeline.CommandEDA, *configFile)
//	if err != nil {
//	    os.Exit(1)
//	}
//	err = a.Run(func(ctx context.Context, r *pipeline.Runner) error {
//	    _, err := r.RunEDA(ctx)
//	    return err
//	})
package app
