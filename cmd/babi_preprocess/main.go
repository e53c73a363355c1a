package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/wbrown/babi_dataset"
	"github.com/wbrown/babi_dataset/store"
)

func progress(label string) func(done, total int) {
	return func(done, total int) {
		log.Printf("%s ... %d/%d", label, done, total)
	}
}

// Result is what a preprocessing run produced, for reporting.
type Result struct {
	Lexicon *babi_dataset.Lexicon
	Dataset *babi_dataset.Dataset
	Stats   babi_dataset.LengthStats
	Written *store.CountingSink
}

// Run discovers, encodes and persists the corpus described by `config`
// into `sink`.
func Run(ctx context.Context, config Config, sink store.Sink) (*Result,
	error) {
	pathInfos, err := babi_dataset.GlobTexts(config.Input)
	if err != nil {
		return nil, err
	}
	babi_dataset.SortPathInfoByPath(pathInfos)
	paths := babi_dataset.GetPaths(pathInfos)
	log.Printf("Found %d task files (%s) in %s", len(paths),
		humanize.Bytes(babi_dataset.TotalSize(pathInfos)), config.Input)

	builder := babi_dataset.NewLexiconBuilder()
	builder.Progress = progress("Creating lexicon")
	if err := builder.AddFiles(paths); err != nil {
		return nil, err
	}
	lex := builder.Finalize()
	log.Printf("Lexicon has %d tokens (%d discovered)", lex.Len(),
		lex.Organic())

	encoder, err := babi_dataset.NewStoryEncoderWithCache(lex,
		config.LengthLimit, config.CacheSize)
	if err != nil {
		return nil, err
	}
	encoder.FlushAtEOF = !config.DropLast
	encoder.Progress = progress("Encoding stories")
	ds, err := encoder.EncodeFiles(paths)
	if err != nil {
		return nil, err
	}

	stats := babi_dataset.ComputeLengthStats(ds.Lengths, config.LengthLimit)
	written := &store.CountingSink{Sink: sink, Verbose: config.Verbose}
	split := babi_dataset.Partition(ds, config.JointTrain)
	if err := store.WriteDataset(ctx, written, lex, split,
		config.JointTrain); err != nil {
		return nil, err
	}
	return &Result{
		Lexicon: lex,
		Dataset: ds,
		Stats:   stats,
		Written: written,
	}, nil
}

func reportStats(stats babi_dataset.LengthStats) {
	log.Printf("Total Number of stories: %s", humanize.Comma(
		int64(stats.Total)))
	log.Printf("Number of stories with lengths > %d: %s (%% %.2f) "+
		"[discarded]", stats.Limit, humanize.Comma(int64(stats.Exceeding)),
		stats.ExceedingPct)
	log.Printf("Number of Remaining Stories: %s", humanize.Comma(
		int64(stats.Remaining)))
	log.Printf("Story lengths: max %d, mean %0.2f, median %0.0f",
		stats.Max, stats.Mean, stats.Median)
}

func buildSink(config Config) (store.Sink, error) {
	outDir := config.OutputDir()
	fileSink := store.NewFileSink(outDir)
	log.Printf("Dataset output: %s", outDir)
	if config.Upload == "" {
		return fileSink, nil
	}
	bucket, prefix, err := ParseUpload(config.Upload)
	if err != nil {
		return nil, err
	}
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	log.Printf("Dataset upload: s3://%s/%s", bucket, prefix)
	return store.MultiSink{fileSink, &store.S3Sink{
		Client: s3.New(sess),
		Bucket: bucket,
		Prefix: prefix,
	}}, nil
}

func main() {
	config, err := ParseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	limit := "none"
	if config.LengthLimit != nil {
		limit = fmt.Sprintf("%d", *config.LengthLimit)
	}
	log.Printf("Input directory: %s", config.Input)
	log.Printf("Length limit: %s", limit)

	sink, err := buildSink(config)
	if err != nil {
		log.Fatal(err)
	}

	begin := time.Now()
	result, err := Run(context.Background(), config, sink)
	if err != nil {
		log.Fatal(err)
	}
	reportStats(result.Stats)
	log.Printf("Saved %s in %0.2fs", result.Written,
		time.Since(begin).Seconds())
}
