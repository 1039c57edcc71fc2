package catalogsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {
    "url": "https://www.surf-forecast.com/breaks/coxos/",
    "details": {
      "Spot Description": "Heavy right-hand point over reef.",
      "Direction of Wave": "Right",
      "Type of Bottom": "Reef",
      "Star Ratings": {"Consistency": 4, "Crowd Factor": 5, "Localism": 4},
      "Surf Level Box Colors": ["light", "light", "light", "light", "dark", "dark", "dark", "light"],
      "Best Tide Box Colors": ["dark", "dark", "light", "light", "light"]
    }
  }
]`

func TestFileSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surf_spots.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	entries, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Right", entries[0].Details.DirectionOfWave)
	require.Equal(t, 5, entries[0].Details.StarRatings["Crowd Factor"])
	require.Len(t, entries[0].Details.SurfLevelBoxColors, 8)
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	require.ErrorContains(t, err, "open catalog file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url": 1}`), 0o600))
	_, err = NewFileSource(path).Load(context.Background())
	require.ErrorContains(t, err, "decode catalog")
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "abc.r2.cloudflarestorage.com", sanitizeEndpoint("https://abc.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("http://localhost:9000"))
}

func TestNewObjectSourceRequiresLocation(t *testing.T) {
	_, err := NewObjectSource(ObjectConfig{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)

	src, err := NewObjectSource(ObjectConfig{Endpoint: "http://localhost:9000", Bucket: "catalog", Key: "surf_spots.json"}, nil)
	require.NoError(t, err)
	require.Equal(t, "catalog", src.bucket)
}
