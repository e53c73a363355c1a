package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/wbrown/babi_dataset"
	"github.com/wbrown/babi_dataset/store"
	"github.com/wbrown/babi_dataset/types"
)

// renderStory writes a story's inputs as text, followed by its answers.
func renderStory(w io.Writer, idx int, lex *babi_dataset.Lexicon,
	story *types.Story) error {
	_, err := fmt.Fprintf(w, "story %d: %s\nanswers %d: %s\n", idx,
		strings.Join(lex.DecodeTokens(story.Inputs), " "), idx,
		strings.Join(lex.DecodeTokens(story.Outputs), " "))
	return err
}

func main() {
	lexiconFile := flag.String("lexicon", "",
		"lexicon-dict.json written alongside the dataset")
	inputFile := flag.String("input", "",
		".msgpack story file to decode")
	outputFile := flag.String("output", "",
		"file to write decoded stories to, defaults to stdout")
	flag.Parse()

	if *lexiconFile == "" {
		flag.Usage()
		log.Fatal("Must provide -lexicon")
	}
	if *inputFile == "" {
		flag.Usage()
		log.Fatal("Must provide -input")
	}

	lexiconHandle, err := os.Open(*lexiconFile)
	if err != nil {
		log.Fatal(err)
	}
	lex, err := babi_dataset.LoadLexicon(lexiconHandle)
	lexiconHandle.Close()
	if err != nil {
		log.Fatal(err)
	}

	inputHandle, err := os.Open(*inputFile)
	if err != nil {
		log.Fatal(err)
	}
	defer inputHandle.Close()
	stories, err := store.ReadStories(bufio.NewReader(inputHandle))
	if err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *outputFile != "" {
		if out, err = os.Create(*outputFile); err != nil {
			log.Fatal(err)
		}
		defer out.Close()
	}
	writer := bufio.NewWriter(out)
	for idx := range stories {
		if err := renderStory(writer, idx, lex, &stories[idx]); err != nil {
			log.Fatal(err)
		}
	}
	if err := writer.Flush(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Decoded %d stories", len(stories))
}
