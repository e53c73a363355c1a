package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3MockClient is a mock implementation of S3Client that keeps uploaded
// objects in memory.
type S3MockClient struct {
	s3iface.S3API
	Objects     map[string][]byte
	PutObjError error
}

func NewS3MockClient() *S3MockClient {
	return &S3MockClient{Objects: make(map[string][]byte)}
}

func (m *S3MockClient) PutObjectWithContext(_ aws.Context,
	input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput,
	error) {
	if m.PutObjError != nil {
		return nil, m.PutObjError
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.Objects[aws.StringValue(input.Bucket)+"/"+
		aws.StringValue(input.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestFileSink(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(root, 0755))
	stale := filepath.Join(root, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	sink := NewFileSink(root)
	_, statErr := os.Stat(stale)
	assert.NoError(t, statErr, "nothing is cleared before the first write")

	require.NoError(t, sink.Put(context.Background(), "a/b/c.txt",
		[]byte("hello")))
	_, statErr = os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr), "first write recreates the root")
	require.NoError(t, sink.Put(context.Background(), "d.txt",
		[]byte("world")))
	contents, err := os.ReadFile(filepath.Join(root, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))
	_, statErr = os.Stat(filepath.Join(root, "a", "b", "c.txt"))
	assert.NoError(t, statErr, "later writes keep earlier files")
}

func TestS3Sink(t *testing.T) {
	client := NewS3MockClient()
	sink := &S3Sink{Client: client, Bucket: "bucket", Prefix: "/babi/en/"}
	assert.Equal(t, "babi/en/train/train.msgpack",
		sink.Key("train/train.msgpack"))
	require.NoError(t, sink.Put(context.Background(), "lexicon.txt",
		[]byte("lexicon:mary  number:0\n")))
	assert.Equal(t, "lexicon:mary  number:0\n",
		string(client.Objects["bucket/babi/en/lexicon.txt"]))

	noPrefix := &S3Sink{Client: client, Bucket: "bucket"}
	assert.Equal(t, "lexicon.txt", noPrefix.Key("lexicon.txt"))
}

func TestS3SinkError(t *testing.T) {
	client := NewS3MockClient()
	client.PutObjError = awserr.New(s3.ErrCodeNoSuchBucket,
		"bucket does not exist", nil)
	sink := &S3Sink{Client: client, Bucket: "missing"}
	err := sink.Put(context.Background(), "lexicon.txt", []byte{})
	require.Error(t, err)
	var awsErr awserr.Error
	require.True(t, errors.As(err, &awsErr))
	assert.Equal(t, s3.ErrCodeNoSuchBucket, awsErr.Code())
	assert.Contains(t, err.Error(), "s3://missing/lexicon.txt")
}

func TestMultiSinkAndCounter(t *testing.T) {
	client := NewS3MockClient()
	root := t.TempDir()
	fileSink := NewFileSink(root)
	counter := &CountingSink{Sink: MultiSink{fileSink,
		&S3Sink{Client: client, Bucket: "b"}}}
	require.NoError(t, counter.Put(context.Background(), "x.txt",
		[]byte("1234")))
	require.NoError(t, counter.Put(context.Background(), "y.txt",
		[]byte("56")))
	assert.Equal(t, 2, counter.Files)
	assert.Equal(t, uint64(6), counter.Total)
	assert.Equal(t, "2 files, 6 B", counter.String())
	assert.Len(t, client.Objects, 2)
	_, statErr := os.Stat(filepath.Join(root, "y.txt"))
	assert.NoError(t, statErr)
}
