package koji_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/maven-repo-builder/pkg/downloader"
	"github.com/aquasecurity/maven-repo-builder/pkg/koji"
)

func TestClient_LatestMavenArchives(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		fileName string
		want     []koji.Archive
		wantErr  string
	}{
		{
			name:     "happy path",
			tag:      "mylib-1.0-build",
			fileName: "testdata/latest-maven-archives.xml",
			want: []koji.Archive{
				{
					GroupID:      "org.example",
					ArtifactID:   "mylib",
					Version:      "1.0.0.redhat-1",
					BuildName:    "org.example-mylib",
					BuildVersion: "1.0.0.redhat_1",
					BuildRelease: "1",
					Filename:     "mylib-1.0.0.redhat-1.jar",
				},
				{
					GroupID:      "org.example",
					ArtifactID:   "mylib",
					Version:      "1.0.0.redhat-1",
					BuildName:    "org.example-mylib",
					BuildVersion: "1.0.0.redhat_1",
					BuildRelease: "1",
					Filename:     "mylib-1.0.0.redhat-1.pom",
				},
				{
					GroupID:      "org.example",
					ArtifactID:   "parent",
					Version:      "1.0.0.redhat-1",
					BuildName:    "org.example-mylib",
					BuildVersion: "1.0.0.redhat_1",
					BuildRelease: "1",
					Filename:     "parent-1.0.0.redhat-1.pom",
				},
			},
		},
		{
			name:     "fault",
			tag:      "missing-tag",
			fileName: "testdata/fault.xml",
			wantErr:  "No such tagInfo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Contains(t, string(b), "<methodName>getLatestMavenArchives</methodName>")
				assert.Contains(t, string(b), "<string>"+tt.tag+"</string>")
				http.ServeFile(w, r, tt.fileName)
			}))
			defer ts.Close()

			c := koji.NewClient(downloader.NewHTTPClient(0), ts.URL+"/kojihub")
			got, err := c.LatestMavenArchives(context.Background(), tt.tag)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := koji.NewClient(downloader.NewHTTPClient(0), ts.URL)
	_, err := c.LatestMavenArchives(context.Background(), "tag")
	require.Error(t, err)
}

func TestArchive_Type(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{fileName: "mylib-1.0.jar", want: "jar"},
		{fileName: "mylib-1.0.pom", want: "pom"},
		{fileName: "mylib-1.0-dist.tar.gz", want: "gz"},
		{fileName: "README", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, koji.Archive{Filename: tt.fileName}.Type())
		})
	}
}
