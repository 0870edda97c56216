package out_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	backupout "libtrack/internal/modules/backup/adapter/out"
	"libtrack/internal/modules/backup/domain"
	port "libtrack/internal/modules/backup/port/out"
	apperrors "libtrack/internal/platform/errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 answers the handful of path-style S3 calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		prefix := req.URL.Query().Get("prefix")
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}}), nil
	}
	switch req.Method {
	case http.MethodHead:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, nil, nil), nil
		}
		return respond(http.StatusOK, nil, http.Header{"Content-Length": {strconv.Itoa(len(body))}}), nil
	case http.MethodPut:
		raw, _ := io.ReadAll(req.Body)
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
			raw = decodeAWSChunked(raw)
		}
		f.objects[key] = raw
		return respond(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			payload := []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return respond(http.StatusNotFound, payload, http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return respond(http.StatusOK, body, http.Header{"Content-Length": {strconv.Itoa(len(body))}}), nil
	}
	return respond(http.StatusNotImplemented, nil, nil), nil
}

func respond(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(bytes.NewReader(body)), ContentLength: int64(len(body))}
}

// decodeAWSChunked strips aws-chunked framing: "<hex>[;ext]\r\n<data>\r\n" ... "0\r\n<trailers>".
func decodeAWSChunked(raw []byte) []byte {
	r := bufio.NewReader(bytes.NewReader(raw))
	var out bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return out.Bytes()
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil || size == 0 {
			return out.Bytes()
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return out.Bytes()
		}
		_, _ = r.ReadString('\n')
	}
}

func newS3Store(t *testing.T, prefix string) (port.BlobStore, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	store, err := backupout.NewS3BlobStore(context.Background(), backupout.S3Config{
		Bucket:          "library",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		Prefix:          prefix,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	if err != nil {
		t.Fatalf("new s3 store: %v", err)
	}
	return store, fake
}

func newFSStore(t *testing.T) port.BlobStore {
	t.Helper()
	store, err := backupout.NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	return store
}

func TestBlobStoreContract(t *testing.T) {
	t.Parallel()
	stores := map[string]func(t *testing.T) port.BlobStore{
		"fs": newFSStore,
		"s3": func(t *testing.T) port.BlobStore {
			store, _ := newS3Store(t, "")
			return store
		},
	}
	for name, open := range stores {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := open(t)

			payload := []byte(`{"schema_version":1}`)
			obj, err := store.Put(ctx, "backups/b.json", bytes.NewReader(payload), domain.ContentType)
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if obj.Key != "backups/b.json" || obj.Size != int64(len(payload)) {
				t.Fatalf("unexpected object: %+v", obj)
			}
			if _, err := store.Put(ctx, "backups/a.json", strings.NewReader("{}"), domain.ContentType); err != nil {
				t.Fatalf("put second: %v", err)
			}
			if _, err := store.Put(ctx, "other/c.json", strings.NewReader("{}"), domain.ContentType); err != nil {
				t.Fatalf("put foreign: %v", err)
			}
			if _, err := store.Put(ctx, "backups/b.json", strings.NewReader("{}"), domain.ContentType); !errors.Is(err, domain.ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}

			objects, err := store.List(ctx, domain.KeyPrefix)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(objects) != 2 || objects[0].Key != "backups/a.json" || objects[1].Key != "backups/b.json" {
				t.Fatalf("unexpected listing: %+v", objects)
			}

			rc, err := store.Get(ctx, "backups/b.json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			got, _ := io.ReadAll(rc)
			_ = rc.Close()
			if !bytes.Equal(got, payload) {
				t.Fatalf("payload = %q, want %q", got, payload)
			}

			if _, err := store.Get(ctx, "backups/missing.json"); !errors.Is(err, apperrors.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestS3BlobStoreAppliesPrefix(t *testing.T) {
	t.Parallel()
	store, fake := newS3Store(t, "/tenant-a/")
	ctx := context.Background()
	if _, err := store.Put(ctx, "backups/x.json", strings.NewReader("{}"), domain.ContentType); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := fake.objects["tenant-a/backups/x.json"]; !ok {
		t.Fatalf("expected prefixed object key, have %v", fake.objects)
	}
	objects, err := store.List(ctx, domain.KeyPrefix)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "backups/x.json" {
		t.Fatalf("unexpected listing: %+v", objects)
	}
}

func TestFSBlobStoreRejectsTraversal(t *testing.T) {
	t.Parallel()
	store := newFSStore(t)
	for _, key := range []string{"", "../x.json", "/abs.json"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("{}"), ""); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestNewS3BlobStoreRequiresBucket(t *testing.T) {
	t.Parallel()
	if _, err := backupout.NewS3BlobStore(context.Background(), backupout.S3Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}
