// Package pipeline wires the loaders, analyses and writers into the three
// batch commands: eda, scenario and trainer.
//
// A Runner executes each command as a sequence of named stages. Every
// stage runs inside a trace span, has its duration recorded and is listed
// in the run manifest written next to the outputs.
package pipeline
