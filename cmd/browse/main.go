package main

import (
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matst80/slask-catalog/pkg/source"
)

func main() {
	url := flag.String("url", source.DefaultBaseUrl, "catalog api base url")
	retries := flag.Int("retries", 3, "catalog fetch retries")
	backoff := flag.Duration("backoff", 500*time.Millisecond, "delay between catalog fetch retries")
	flag.Parse()

	if v, ok := os.LookupEnv("CATALOG_URL"); ok && !isFlagSet("url") {
		*url = v
	}

	client := source.NewClient(*url)
	m := newModel(source.NewLoader(client, *retries, *backoff), client)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("browse failed: %v", err)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
