// Package consultancy embeds the construction case search and answering
// engine in a Go program, without running the HTTP server.
//
// A client loads a corpus of resolved cases (CSV or XLSX), ranks them for a
// question and, optionally, composes an answer through a chat model.
//
//	client, _ := consultancy.New(ctx,
//	    consultancy.WithCorpusFile("data/cases.csv"),
//	    consultancy.WithOllama("http://localhost:11434", "nomic-embed-text"),
//	    consultancy.WithFileCache("data"),
//	)
//	defer client.Close()
//
//	results, _ := client.Search(ctx, "roof leaking after rain", consultancy.TopK(3))
//	answer, _ := client.Chat(ctx, "session-1", "How do I fix a cracked slab?")
//
// Without an embedder only lexical search is available.
package consultancy
