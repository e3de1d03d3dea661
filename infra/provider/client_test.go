package provider

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/infra/logger"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(config.ProviderConfig{BaseURL: url}, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	return c
}

func cp1251(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestFetchRoomsQueryAndDecoding(t *testing.T) {
	body := `{"psrozklad_export":{"blocks":[
		{"name":"Корпус 1","objects":[
			{"name":" Аудиторія 101 ","ID":" 101 "},
			{"name":"","ID":"102"},
			{"name":"Лабораторія","ID":""},
			{"name":"Спортзал","ID":7}
		]},
		{"name":"empty","objects":null}
	]}}`
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write(cp1251(t, body))
	}))
	defer srv.Close()

	rooms, err := newTestClient(t, srv.URL).FetchRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].ID)
	assert.Equal(t, "Аудиторія 101", rooms[0].Name)
	assert.Equal(t, "7", rooms[1].ID)
	assert.Equal(t, "Спортзал", rooms[1].Name)

	q := got.URL.Query()
	assert.Equal(t, "obj_list", q.Get("req_type"))
	assert.Equal(t, "room", q.Get("req_mode"))
	assert.Equal(t, "yes", q.Get("show_ID"))
	assert.Equal(t, "json", q.Get("req_format"))
	assert.Equal(t, "WINDOWS-1251", q.Get("coding_mode"))
	assert.Equal(t, "ok", q.Get("bs"))
	assert.Equal(t, "RoomLoadExporter/1.0", got.Header.Get("User-Agent"))
	assert.Equal(t, "gzip, deflate", got.Header.Get("Accept-Encoding"))
}

func TestFetchRoomScheduleQuery(t *testing.T) {
	body := `{"psrozklad_export":{"roz_items":[
		{"object":"101","date":"01.09.2025","lesson_number":"1","lesson_description":"Математика"},
		{"object":"101","date":"01.09.2025","lesson_number":2,"lesson_description":""}
	]}}`
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write(cp1251(t, body))
	}))
	defer srv.Close()

	entries, err := newTestClient(t, srv.URL+"/").FetchRoomSchedule(context.Background(), "10 1", "01.09.2025", "05.09.2025")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Математика", entries[0].LessonDescription)
	assert.Equal(t, "1", entries[0].LessonNumber)
	assert.Equal(t, "2", entries[1].LessonNumber)
	assert.Equal(t, "", entries[1].LessonDescription)

	q := got.URL.Query()
	assert.Equal(t, "rozklad", q.Get("req_type"))
	assert.Equal(t, "10 1", q.Get("OBJ_ID"))
	assert.Equal(t, "united", q.Get("ros_text"))
	assert.Equal(t, "01.09.2025", q.Get("begin_date"))
	assert.Equal(t, "05.09.2025", q.Get("end_date"))
	assert.True(t, q.Has("OBJ_name"))
	assert.True(t, q.Has("dep_name"))
}

func TestFetchRoomScheduleEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"psrozklad_export":{}}`))
	}))
	defer srv.Close()

	entries, err := newTestClient(t, srv.URL).FetchRoomSchedule(context.Background(), "1", "01.09.2025", "01.09.2025")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompressedResponses(t *testing.T) {
	payload := []byte(`{"psrozklad_export":{"blocks":[{"objects":[{"name":"A","ID":"1"}]}]}}`)
	compress := map[string]func(*bytes.Buffer){
		"gzip": func(b *bytes.Buffer) {
			w := gzip.NewWriter(b)
			_, _ = w.Write(payload)
			_ = w.Close()
		},
		"deflate-zlib": func(b *bytes.Buffer) {
			w := zlib.NewWriter(b)
			_, _ = w.Write(payload)
			_ = w.Close()
		},
		"deflate-raw": func(b *bytes.Buffer) {
			w, _ := flate.NewWriter(b, flate.DefaultCompression)
			_, _ = w.Write(payload)
			_ = w.Close()
		},
	}
	for name, fn := range compress {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			fn(&buf)
			header := "gzip"
			if name != "gzip" {
				header = "deflate"
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Encoding", header)
				_, _ = w.Write(buf.Bytes())
			}))
			defer srv.Close()

			rooms, err := newTestClient(t, srv.URL).FetchRooms(context.Background())
			require.NoError(t, err)
			require.Len(t, rooms, 1)
			assert.Equal(t, "A", rooms[0].Name)
		})
	}
}

func TestContentTypeCharsetWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"psrozklad_export":{"blocks":[{"objects":[{"name":"Зала","ID":"1"}]}]}}`))
	}))
	defer srv.Close()

	rooms, err := newTestClient(t, srv.URL).FetchRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Зала", rooms[0].Name)
}

func TestErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := newTestClient(t, srv.URL).FetchRoomSchedule(context.Background(), "1", "01.09.2025", "01.09.2025")
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadGateway, se.Code)
	})
	t.Run("malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"psrozklad_export":`))
		}))
		defer srv.Close()
		_, err := newTestClient(t, srv.URL).FetchRooms(context.Background())
		assert.ErrorContains(t, err, "parse json")
	})
	t.Run("canceled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		defer srv.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestClient(t, srv.URL).FetchRooms(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("unknown charset", func(t *testing.T) {
		_, err := NewClient(config.ProviderConfig{BaseURL: "http://x", Encoding: "klingon-42"})
		assert.Error(t, err)
	})
}

func TestRateLimitedClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient(config.ProviderConfig{BaseURL: srv.URL, RequestsPerSecond: 50}, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	require.NotNil(t, c.limiter)
	for i := 0; i < 3; i++ {
		_, err := c.FetchRooms(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}
