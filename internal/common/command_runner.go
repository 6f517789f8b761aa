package common

import (
	"context"
	"io"

	"resumebuilder/internal/errors"
)

// LoadInputFunc defines how to turn the command's file argument into the operation input.
// (*FileProcessor).ReadUpload and (*FileProcessor).LoadRecord both satisfy it.
type LoadInputFunc[Input any] func(fp *FileProcessor, filename string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is one session action run against the loaded input.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// Runner carries what every file-based command needs
type Runner struct {
	Logger      *errors.Logger
	Out         io.Writer
	MaxFileSize int64
}

// RunFileCommand encapsulates the common logic for file-based CLI commands:
// load the input, run the operation, format the result.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	r Runner,
	cmdConfig CommandConfig,
	filename string,
	load LoadInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(r.Logger, r.MaxFileSize)
	outputHandler := NewOutputHandler(r.Logger, r.Out)

	input, err := load(fileProcessor, filename)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

