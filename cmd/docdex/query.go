package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/docdex"
)

// snippetLength bounds the content preview printed per result.
const snippetLength = 200

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	if c.Text != "" {
		return c.query(deps, c.Text)
	}

	fmt.Fprintln(deps.Stdout, "Enter queries, one per line (Ctrl-D or \"exit\" to quit).")
	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		// Interactive mode reports errors and keeps the session alive.
		if err := c.query(deps, line); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		}
	}
	return scanner.Err()
}

func (c *QueryCmd) query(deps *Dependencies, text string) error {
	results, err := deps.Search.Search(deps.Ctx, text, docdex.SearchOptions{
		TopK:    c.TopK,
		Service: c.Service,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, r := range results {
		title := strings.Join(r.Chunk.Headers, " > ")
		if title == "" {
			title = r.Chunk.PageID
		}
		fmt.Fprintf(deps.Stdout, "%d. [%s] %s (score %.3f)\n", i+1, r.Chunk.Service, title, r.Score)
		if r.Chunk.URL != "" {
			fmt.Fprintf(deps.Stdout, "   %s\n", r.Chunk.URL)
		}
		fmt.Fprintf(deps.Stdout, "   %s\n\n", snippet(r.Chunk.Content))
	}
	return nil
}

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "..."
}
