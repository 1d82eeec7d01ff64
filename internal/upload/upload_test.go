package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/core/history"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/validate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestTransport(t *testing.T, h http.Handler, opts ...Option) *Transport {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client := api.New(server.URL + "/api")
	client.SetTransport(server.Client().Transport)
	return NewTransport(client, opts...)
}

type progressLog struct {
	mu     sync.Mutex
	values []int
}

func (p *progressLog) add(v int) {
	p.mu.Lock()
	p.values = append(p.values, v)
	p.mu.Unlock()
}

func (p *progressLog) snapshot() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.values...)
}

func TestUpload_FormAndProgress(t *testing.T) {
	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		mr, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			return
		}
		var names []string
		values := map[string]string{}
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(p)
			names = append(names, p.FormName())
			values[p.FormName()] = string(data)
			if p.FormName() == "file" {
				assert.Equal(t, "deal.pdf", p.FileName())
			}
		}
		assert.Equal(t, []string{"file", "fileType", "fileName", "uploadTime", "companyId"}, names)
		assert.Equal(t, "1", values["fileType"])
		assert.Equal(t, "deal.pdf", values["fileName"])
		assert.Equal(t, "c9", values["companyId"])
		assert.Equal(t, "2024-03-01T08:00:00.000Z", values["uploadTime"])
		assert.Equal(t, strings.Repeat("x", 256*1024), values["file"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"id":"f1"}}`))
	}))

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	form := NewFileForm(BytesFile("deal.pdf", []byte(strings.Repeat("x", 256*1024))), model.FileTypeContract, "c9", now)
	var log progressLog
	reply, err := tr.Upload(context.Background(), DefaultPath, form, log.add)
	require.NoError(t, err)

	m, ok := reply.(map[string]any)
	require.True(t, ok, "reply should be a JSON object, got %T", reply)
	assert.Equal(t, "success", m["status"])

	values := log.snapshot()
	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.Greater(t, values[i], values[i-1], "progress must strictly increase")
	}
	assert.Equal(t, 100, values[len(values)-1])
}

func TestUpload_ReplyDecoding(t *testing.T) {
	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		switch r.URL.Path {
		case "/api/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/api/text":
			w.Write([]byte("stored"))
		}
	}))
	form := NewForm().AddFile("file", BytesFile("a.pdf", []byte("pdf")))

	reply, err := tr.Upload(context.Background(), "/empty", form, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, reply)

	reply, err = tr.Upload(context.Background(), "/text", form, nil)
	require.NoError(t, err)
	assert.Equal(t, "stored", reply)
}

func TestUpload_ServerError(t *testing.T) {
	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, `{"message":"disk full"}`, http.StatusInternalServerError)
	}))

	_, err := tr.Upload(context.Background(), DefaultPath, NewForm().AddField("a", "b"), nil)
	require.Error(t, err)
	assert.True(t, api.IsServer(err))
	assert.Equal(t, "upload failed: 500 Internal Server Error", err.Error())
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
}

func TestUpload_TimeoutStopsProgress(t *testing.T) {
	release := make(chan struct{})
	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), WithTimeout(50*time.Millisecond))
	defer close(release)

	var log progressLog
	_, err := tr.Upload(context.Background(), DefaultPath, NewForm().AddFile("file", BytesFile("a.pdf", []byte("abc"))), log.add)
	require.Error(t, err)
	assert.True(t, api.IsTimeout(err))
	assert.Equal(t, "upload timed out", err.Error())

	after := len(log.snapshot())
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, log.snapshot(), after, "no progress after the call settled")
}

func TestUpload_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := api.New(server.URL)
	client.SetTransport(server.Client().Transport)
	server.Close()

	_, err := NewTransport(client).Upload(context.Background(), DefaultPath, NewForm().AddField("a", "b"), nil)
	require.Error(t, err)
	assert.True(t, api.IsNetwork(err))
	assert.Equal(t, "network error, check the connection", err.Error())
}

func TestBatch_RunAndRetry(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	var failBad atomic.Bool
	failBad.Store(true)

	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		if r.FormValue("fileName") == "bad.pdf" && failBad.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "name": r.FormValue("fileName")})
	}))

	store, err := history.NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	var lastProgress sync.Map
	batch := NewBatch(tr, BatchConfig{
		FileType:  model.FileTypeContract,
		CompanyID: "c1",
		Recorder:  store,
		OnProgress: func(name string, pct int) {
			lastProgress.Store(name, pct)
		},
	})

	problems := batch.Add(
		BytesFile("one.pdf", []byte("1")),
		BytesFile("bad.pdf", []byte("22")),
		BytesFile("two.pdf", []byte("333")),
		BytesFile("photo.png", []byte("4")),
	)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "unsupported file format: .png")
	require.Equal(t, 3, batch.Len())

	result, err := batch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.pdf", result.Failed[0].Name)
	assert.Contains(t, result.Failed[0].Reason, "502")
	assert.Equal(t, int32(1), maxInFlight.Load(), "uploads must be sequential")

	items := batch.Items()
	require.Len(t, items, 1, "only failed files stay pending")
	assert.Equal(t, StatusFailed, items[0].Status)
	assert.Equal(t, -1, items[0].Progress)
	v, _ := lastProgress.Load("one.pdf")
	assert.Equal(t, 100, v)
	v, _ = lastProgress.Load("bad.pdf")
	assert.Equal(t, -1, v)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	failBad.Store(false)
	require.NoError(t, batch.Retry(context.Background(), "bad.pdf"))
	assert.Zero(t, batch.Len())

	failed, err := store.ListFiltered(history.Filter{Failed: true})
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	assert.ErrorIs(t, batch.Retry(context.Background(), "bad.pdf"), ErrUnknown)
	_, err = batch.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestBatch_DuplicatesAndTypeSwitch(t *testing.T) {
	batch := NewBatch(nil, BatchConfig{FileType: model.FileTypeDrawing, Limits: validate.Limits{MaxFiles: 2}})

	problems := batch.Add(BytesFile("a.jpg", []byte("a")), BytesFile("A.JPG", []byte("a")), BytesFile("b.png", []byte("bb")), BytesFile("c.gif", []byte("c")))
	require.Len(t, problems, 2)
	assert.Equal(t, "file already added", problems[0].Message)
	assert.Contains(t, problems[1].Message, "at most 2")
	assert.Equal(t, 2, batch.Len())

	assert.True(t, batch.Remove("a.jpg"))
	assert.False(t, batch.Remove("missing.jpg"))

	require.NoError(t, batch.SetFileType(model.FileTypeContract))
	assert.Zero(t, batch.Len())
	assert.Equal(t, model.FileTypeContract, batch.FileType())
}

func TestBatch_RemoveRefusedWhileRunning(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var received []string

	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		name := r.FormValue("fileName")
		mu.Lock()
		received = append(received, name)
		mu.Unlock()
		if name == "a.pdf" {
			close(arrived)
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))

	batch := NewBatch(tr, BatchConfig{FileType: model.FileTypeContract})
	require.Empty(t, batch.Add(BytesFile("a.pdf", []byte("a")), BytesFile("b.pdf", []byte("b"))))

	done := make(chan BatchResult, 1)
	go func() {
		result, err := batch.Run(context.Background())
		assert.NoError(t, err)
		done <- result
	}()

	<-arrived
	assert.False(t, batch.Remove("b.pdf"), "remove during a run")
	assert.Equal(t, 2, batch.Len())
	close(release)

	result := <-done
	assert.Equal(t, 2, result.Succeeded)
	mu.Lock()
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, received)
	mu.Unlock()

	require.Empty(t, batch.Add(BytesFile("c.pdf", []byte("c"))))
	assert.True(t, batch.Remove("c.pdf"), "remove once idle")
}

func TestUpload_LocalFileErrorIsNotNetwork(t *testing.T) {
	var hits atomic.Int32
	tr := newTestTransport(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	missing := File{Name: "gone.pdf", Size: 3, Open: func() (io.ReadCloser, error) { return nil, os.ErrNotExist }}

	_, err := tr.Upload(context.Background(), DefaultPath, NewFileForm(missing, model.FileTypeContract, "c1", time.Now()), nil)
	require.Error(t, err)
	assert.True(t, api.IsRequest(err))
	assert.False(t, api.IsNetwork(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "gone.pdf")
	assert.Zero(t, hits.Load(), "nothing is sent when a file cannot be opened")
}

func TestSizedReader(t *testing.T) {
	exact := &sizedReader{name: "a.pdf", r: strings.NewReader("abc"), left: 3}
	data, err := io.ReadAll(exact)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	short := &sizedReader{name: "a.pdf", r: strings.NewReader("ab"), left: 3}
	_, err = io.ReadAll(short)
	assert.ErrorIs(t, err, errSizeChanged)

	long := &sizedReader{name: "a.pdf", r: strings.NewReader("abcd"), left: 3}
	_, err = io.ReadAll(long)
	assert.ErrorIs(t, err, errSizeChanged)
}

func TestEncode_LengthMatchesStream(t *testing.T) {
	form := NewFileForm(BytesFile("deal.pdf", []byte("%PDF-1.4 body")), model.FileTypeContract, "c1", time.Now())
	payload, contentType, err := form.encode()
	require.NoError(t, err)
	defer payload.Close()

	data, err := io.ReadAll(payload)
	require.NoError(t, err)
	assert.Equal(t, payload.Len(), int64(len(data)))
	assert.Contains(t, contentType, "multipart/form-data; boundary=")
	assert.Contains(t, string(data), "%PDF-1.4 body")
}
