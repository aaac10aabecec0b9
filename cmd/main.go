package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/yungbote/neurochat-backend/internal/app"
)

type lifecycle interface {
	Run(ctx context.Context) error
	Close()
}

func main() {
	os.Exit(run(context.Background(), os.Stderr, func(ctx context.Context) (lifecycle, error) {
		a, err := app.New(ctx)
		if err != nil {
			return nil, err
		}
		return a, nil
	}))
}

// run owns the app lifecycle: Close runs exactly once, before the exit code is returned.
func run(ctx context.Context, stderr io.Writer, newApp func(context.Context) (lifecycle, error)) int {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to init app: %v\n", err)
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Server stopped with error: %v\n", err)
		return 1
	}
	return 0
}
