package store

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// Sink receives the files of a persisted dataset. Names are slash
// separated and relative to the sink's root.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// FileSink writes under a local directory. The first Put removes
// anything already at Root, so nothing is cleared until there is a
// dataset to write.
type FileSink struct {
	Root    string
	cleared bool
}

func NewFileSink(root string) *FileSink {
	return &FileSink{Root: root}
}

func (sink *FileSink) clear() error {
	if err := os.RemoveAll(sink.Root); err != nil {
		return errors.Wrapf(err, "cannot clear %s", sink.Root)
	}
	if err := os.MkdirAll(sink.Root, 0755); err != nil {
		return errors.Wrapf(err, "cannot create %s", sink.Root)
	}
	sink.cleared = true
	return nil
}

func (sink *FileSink) Put(_ context.Context, name string,
	data []byte) error {
	if !sink.cleared {
		if err := sink.clear(); err != nil {
			return err
		}
	}
	target := filepath.Join(sink.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "cannot create directory for %s", name)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, "cannot write %s", target)
	}
	return nil
}

// S3Sink uploads each file as an object under Prefix.
type S3Sink struct {
	Client s3iface.S3API
	Bucket string
	Prefix string
}

func (sink *S3Sink) Key(name string) string {
	return path.Join(strings.Trim(sink.Prefix, "/"), name)
}

func (sink *S3Sink) Put(ctx context.Context, name string,
	data []byte) error {
	key := sink.Key(name)
	_, err := sink.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(sink.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return errors.Wrapf(err, "cannot upload s3://%s/%s", sink.Bucket,
			key)
	}
	return nil
}

// MultiSink writes every file to each of its sinks in order.
type MultiSink []Sink

func (sinks MultiSink) Put(ctx context.Context, name string,
	data []byte) error {
	for _, sink := range sinks {
		if err := sink.Put(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}
