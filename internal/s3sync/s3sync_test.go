package s3sync

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPutObject(t *testing.T, fn func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)) {
	t.Helper()
	orig := putObject
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return fn(ctx, in)
	}
	t.Cleanup(func() { putObject = orig })
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o770))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o660))
	}
}

func TestSyncDir_UploadsEveryFileWithRelativeKey(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"trello_export.csv":                       "board,list,card",
		"My_Board_b1/board_My_Board_b1.json":      "{}",
		"My_Board_b1/attachments/c1_a1/photo.png": "png",
		"Other_b2/board_Other_b2.json":            "{}",
	})

	got := map[string]string{}
	stubPutObject(t, func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		body, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		assert.Equal(t, "backups", *in.Bucket)
		got[*in.Key] = string(body)
		return &s3.PutObjectOutput{}, nil
	})

	s := New(Options{Bucket: "backups", Region: "us-east-1"}, nil)
	require.NoError(t, s.SyncDir(context.Background(), root))

	assert.Equal(t, map[string]string{
		"trello_export.csv":                       "board,list,card",
		"My_Board_b1/board_My_Board_b1.json":      "{}",
		"My_Board_b1/attachments/c1_a1/photo.png": "png",
		"Other_b2/board_Other_b2.json":            "{}",
	}, got)
}

func TestSyncDir_StopsOnUploadError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.json": "{}"})

	boom := errors.New("bucket gone")
	stubPutObject(t, func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, boom
	})

	s := New(Options{Bucket: "backups", Region: "us-east-1"}, nil)
	err := s.SyncDir(context.Background(), root)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a.json")
}

func TestSyncDir_EmptyTreeUploadsNothing(t *testing.T) {
	var calls int
	stubPutObject(t, func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		calls++
		return &s3.PutObjectOutput{}, nil
	})

	s := New(Options{Bucket: "backups", Region: "us-east-1"}, nil)
	require.NoError(t, s.SyncDir(context.Background(), t.TempDir()))
	assert.Zero(t, calls)
}
