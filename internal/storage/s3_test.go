package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3(t *testing.T, handler http.HandlerFunc) *S3Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
	})
	return NewS3Service(client)
}

func TestDeleteObjects_ReportsPerKeyErrors(t *testing.T) {
	svc := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Error><Key>backups/a.db</Key><Code>AccessDenied</Code><Message>Access Denied</Message></Error>
</DeleteResult>`))
	})

	err := svc.DeleteObjects(context.Background(), "bucket", []string{"backups/a.db", "backups/b.db"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backups/a.db")
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestDeleteObjects_QuietSuccess(t *testing.T) {
	var calls atomic.Int32
	svc := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></DeleteResult>`))
	})

	keys := make([]string, 1500)
	for i := range keys {
		keys[i] = "backups/" + strings.Repeat("k", i%7+1)
	}
	require.NoError(t, svc.DeleteObjects(context.Background(), "bucket", keys))
	assert.Equal(t, int32(2), calls.Load(), "keys are deleted in batches of 1000")
}

func TestDeleteErrors(t *testing.T) {
	assert.NoError(t, deleteErrors(nil))

	err := deleteErrors([]types.Error{
		{Key: aws.String("x.db"), Code: aws.String("InternalError"), Message: aws.String("try again")},
		{Key: aws.String("y.db")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of the keys failed")
	assert.Contains(t, err.Error(), "x.db")
}
