package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkarell/termlens/internal/glossary"
	"github.com/pkarell/termlens/internal/tui"
)

func main() {
	docPath := flag.String("doc", "", "path to the document to read (.txt, .md or .pdf)")
	historyPath := flag.String("history", filepath.Join(".", "lookups.json"), "path to the lookup history JSON file")
	cachePath := flag.String("cache", "", "override the glossary cache file location")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	llmModel := flag.String("llm-model", "", "override the default provider model")
	llmEndpoint := flag.String("llm-endpoint", "", "custom provider endpoint (eg. http://localhost:11434)")
	flag.Parse()

	if *docPath == "" {
		fmt.Println("usage: termlens -doc <file> [-history <file>] [-cache <file>]")
		os.Exit(2)
	}
	absDoc, err := filepath.Abs(*docPath)
	if err != nil {
		fmt.Println("failed to resolve document path:", err)
		os.Exit(1)
	}
	absHistory, err := filepath.Abs(*historyPath)
	if err != nil {
		fmt.Println("failed to resolve history path:", err)
		os.Exit(1)
	}

	storePath := *cachePath
	if storePath == "" {
		storePath = glossary.DefaultStorePath()
	}
	store := glossary.NewStore(glossary.NewFileStorage(storePath))
	store.Load()

	client, err := glossary.NewFromEnv(glossary.Config{
		Model:    *llmModel,
		Endpoint: *llmEndpoint,
	})
	if err != nil {
		fmt.Println("provider disabled, serving cached definitions only:", err)
	}
	explainer := glossary.NewExplainer(store, client)

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			DocumentPath: absDoc,
			HistoryPath:  absHistory,
			Explainer:    explainer,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
