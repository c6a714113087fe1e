package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleMapping = map[string]string{
	"3":  "ABC1234",
	"0":  "QWE7890",
	"12": "WYZ5678",
}

func TestEncodeSortsKeys(t *testing.T) {
	data, err := Encode(sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"0\": \"QWE7890\",\n  \"12\": \"WYZ5678\",\n  \"3\": \"ABC1234\"\n}\n", string(data))
}

func TestEncodeNilMapping(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestFileExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "vehicle_spot_mapping.json")

	res, err := NewFileExporter(path).Export(context.Background(), sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Destinations)
	assert.Equal(t, 3, res.Entries)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, sampleMapping, got)
}

func TestFileExporterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileExporter(filepath.Join(t.TempDir(), "m.json")).Export(ctx, sampleMapping)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3ExporterUploadsJSON(t *testing.T) {
	putter := &fakePutter{}
	exp, err := NewS3Exporter(putter, "lots", "runs/mapping.json")
	require.NoError(t, err)

	res, err := exp.Export(context.Background(), sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://lots/runs/mapping.json"}, res.Destinations)

	require.NotNil(t, putter.input)
	assert.Equal(t, "lots", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "runs/mapping.json", aws.ToString(putter.input.Key))
	assert.Equal(t, "application/json", aws.ToString(putter.input.ContentType))

	want, err := Encode(sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, want, putter.body)
}

func TestS3ExporterWrapsUploadError(t *testing.T) {
	boom := errors.New("access denied")
	exp, err := NewS3Exporter(&fakePutter{err: boom}, "lots", "mapping.json")
	require.NoError(t, err)

	_, err = exp.Export(context.Background(), sampleMapping)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "s3://lots/mapping.json")
}

func TestNewS3ExporterRequiresDestination(t *testing.T) {
	_, err := NewS3Exporter(&fakePutter{}, "", "mapping.json")
	assert.Error(t, err)

	_, err = NewS3Exporter(&fakePutter{}, "lots", "")
	assert.Error(t, err)
}

func TestRedisExporterReplacesHash(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	mr.HSet("parking:mapping", "99", "STALE01")

	exp, err := NewRedisExporter(client, "parking:mapping")
	require.NoError(t, err)

	res, err := exp.Export(context.Background(), sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Entries)
	assert.Equal(t, []string{"redis://" + mr.Addr() + "/parking:mapping"}, res.Destinations)

	got, err := client.HGetAll(context.Background(), "parking:mapping").Result()
	require.NoError(t, err)
	assert.Equal(t, sampleMapping, got)
}

func TestRedisExporterEmptyMappingClearsKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	mr.HSet("parking:mapping", "1", "OLDCAR1")

	exp, err := NewRedisExporter(client, "parking:mapping")
	require.NoError(t, err)

	_, err = exp.Export(context.Background(), map[string]string{})
	require.NoError(t, err)
	assert.False(t, mr.Exists("parking:mapping"))
}

type stubExporter struct {
	name  string
	err   error
	calls int
}

func (s *stubExporter) Export(context.Context, map[string]string) (Result, error) {
	s.calls++
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{Destinations: []string{s.name}}, nil
}

func TestMultiStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	first := &stubExporter{name: "file"}
	failing := &stubExporter{name: "s3", err: boom}
	last := &stubExporter{name: "redis"}

	res, err := Multi{first, failing, last}.Export(context.Background(), sampleMapping)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"file"}, res.Destinations)
	assert.Equal(t, 0, last.calls)
}

func TestMultiCollectsDestinations(t *testing.T) {
	res, err := Multi{&stubExporter{name: "a"}, &stubExporter{name: "b"}}.Export(context.Background(), sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Destinations)
	assert.Equal(t, 3, res.Entries)
}

func TestResultString(t *testing.T) {
	res := Result{Destinations: []string{"out.json", "s3://lots/mapping.json"}, Entries: 3}
	assert.Equal(t, "Vehicle to spot mapping with 3 entries saved to out.json, s3://lots/mapping.json.", res.String())
}
