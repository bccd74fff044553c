package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/adapters/logger"
	"penalty-console/internal/adapters/rest"
	"penalty-console/internal/application/table"
)

func doctorsAPI(t *testing.T) *rest.Repositories {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/doctor/index", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"","data":[
			{"id":1,"name":"Ana Ruiz","certificate":"111","active":true},
			{"id":2,"name":"Juan Pérez","certificate":"222","active":true},
			{"id":3,"name":"Juana Díaz","certificate":"333","active":false}]}`))
	}))
	t.Cleanup(srv.Close)
	return rest.NewRepositories(apiclient.New(srv.URL, logger.Discard()))
}

func authed() context.Context {
	return apiclient.WithSession(context.Background(), "consolectl", "tok")
}

func TestListPrintsFilteredPage(t *testing.T) {
	c, err := lookupCatalog("doctors")
	require.NoError(t, err)
	st := table.NewState()
	st.SetSearch("juan")

	var out bytes.Buffer
	require.NoError(t, c.list(authed(), doctorsAPI(t), st, &out))
	assert.Contains(t, out.String(), "Juan Pérez")
	assert.Contains(t, out.String(), "Juana Díaz")
	assert.NotContains(t, out.String(), "Ana Ruiz")
	assert.Contains(t, out.String(), "page 1 of 1, 2 rows")
}

func TestExportWritesEveryMatchingRow(t *testing.T) {
	c, err := lookupCatalog("doctors")
	require.NoError(t, err)
	st := table.NewState()
	st.ToggleSort("name")
	st.ToggleSort("name")

	var out bytes.Buffer
	n, err := c.export(authed(), doctorsAPI(t), st, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Juana Díaz", rows[1][1])
}

func TestWriteFileRemovesFailedExport(t *testing.T) {
	c, err := lookupCatalog("doctors")
	require.NoError(t, err)
	repos := doctorsAPI(t)
	dir := t.TempDir()

	failed := filepath.Join(dir, "failed.xlsx")
	_, err = writeFile(failed, func(w io.Writer) (int, error) {
		return c.export(context.Background(), repos, table.NewState(), w)
	})
	require.Error(t, err)
	_, statErr := os.Stat(failed)
	assert.True(t, os.IsNotExist(statErr))

	saved := filepath.Join(dir, "doctors.xlsx")
	n, err := writeFile(saved, func(w io.Writer) (int, error) {
		return c.export(authed(), repos, table.NewState(), w)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	f, err := excelize.OpenFile(saved)
	require.NoError(t, err)
	assert.NoError(t, f.Close())
}

func TestCatalogCommandsReportExpiredToken(t *testing.T) {
	c, err := lookupCatalog("doctors")
	require.NoError(t, err)
	err = c.list(context.Background(), doctorsAPI(t), table.NewState(), &bytes.Buffer{})
	assert.EqualError(t, err, "session expired, run 'consolectl login' again")
}

func TestLookupCatalogUnknown(t *testing.T) {
	_, err := lookupCatalog("planets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "technical-records")
}

func TestTableStateFromFlags(t *testing.T) {
	search, sortBy, desc, page, pageSize = "ruiz", "name", true, 2, 25
	t.Cleanup(func() { search, sortBy, desc, page, pageSize = "", "", false, 1, 0 })

	st, err := tableState()
	require.NoError(t, err)
	assert.Equal(t, "ruiz", st.Search)
	assert.Equal(t, table.Sort{Key: "name", Direction: table.DirDesc}, st.Sort)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, 25, st.PageSize)

	pageSize = 7
	_, err = tableState()
	assert.Error(t, err)
}
