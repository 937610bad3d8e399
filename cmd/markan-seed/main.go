package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"markan/pkg/config"
	"markan/pkg/logging"
	"markan/pkg/services"
)

// loremIpsum returns a markdown string with lorem ipsum content
func loremIpsum(n int) string {
	return fmt.Sprintf(`# Lorem Ipsum %d

Lorem ipsum dolor sit amet, **consectetur** adipiscing elit.

- Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.
- Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.

> Duis aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur.

`, n) +
		"```go\n" +
		"// Example code block\n" +
		"fmt.Println(\"Hello, world!\")\n" +
		"```\n"
}

// seed writes count lorem notes into dir and returns the paths written.
func seed(ctx context.Context, workspace *services.WorkspaceService, dir string, count int) ([]string, error) {
	if !workspace.SetWorkspacePath(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	written := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		path, err := workspace.SaveNote(ctx, "", "Lorem Ipsum", loremIpsum(i))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func main() {
	dir := flag.String("dir", "", "workspace folder to fill (required)")
	count := flag.Int("n", 5, "number of notes to create")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	core, err := services.NewCore(cfg, afero.NewOsFs(), logging.NewOrNop(cfg.Log), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer core.Close()

	written, err := seed(context.Background(), core.Workspace, *dir, *count)
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create note: %v\n", err)
		os.Exit(1)
	}
}
