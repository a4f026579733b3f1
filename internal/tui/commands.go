package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkarell/termlens/internal/glossary"
	"github.com/pkarell/termlens/internal/history"
	"github.com/pkarell/termlens/internal/ingest"
)

func loadDocumentJob(path string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		text, err := ingest.Load(path)
		if err != nil {
			return docResultMsg{err: err}, err
		}
		return docResultMsg{path: path, text: text}, nil
	}
}

func detectTermsJob(explainer *glossary.Explainer, text string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		terms := explainer.DetectTerms(ctx, text)
		return detectResultMsg{terms: terms}, nil
	}
}

func explainTermJob(explainer *glossary.Explainer, term, docContext string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		record := explainer.Explain(ctx, term, docContext)
		return explainResultMsg{term: term, record: record}, nil
	}
}

func appendHistoryJob(path string, entry history.Entry) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		if path == "" {
			return historyResultMsg{}, nil
		}
		if err := history.Append(path, []history.Entry{entry}); err != nil {
			return historyResultMsg{err: err}, err
		}
		return historyResultMsg{entry: entry}, nil
	}
}
