package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/adapters/logger"
	"penalty-console/internal/domain"
)

func newRepos(t *testing.T, h http.HandlerFunc) *Repositories {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRepositories(apiclient.New(srv.URL, logger.Discard()))
}

func TestResource_GetAll(t *testing.T) {
	var method, path string
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = io.WriteString(w, `{"status":"success","message":"ok","data":[{"id":1,"name":"Dra. Ruiz","certificate":"999","active":true}]}`)
	})

	res := repos.Doctors.GetAll(context.Background())
	require.True(t, res.OK(), res.Message())
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "/doctor/index", path)
	assert.Equal(t, []domain.Doctor{{ID: 1, Name: "Dra. Ruiz", Certificate: "999", Active: true}}, res.Data())
}

func TestResource_GetAllEmptyDataIsEmptyList(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","message":"ok","data":null}`)
	})

	res := repos.Courts.GetAll(context.Background())
	require.True(t, res.OK())
	assert.NotNil(t, res.Data())
	assert.Empty(t, res.Data())
}

func TestResource_CreateOrUpdateReturnsServerRecord(t *testing.T) {
	var sent domain.Doctor
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctor/createorUpdate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&sent)
		_, _ = io.WriteString(w, `{"status":"success","message":"Registrado","data":{"id":7,"name":"Juan Pérez","certificate":"12345"}}`)
	})

	res := repos.Doctors.CreateOrUpdate(context.Background(), domain.Doctor{Name: "Juan Pérez", Certificate: "12345"})
	require.True(t, res.OK())
	assert.Equal(t, "Registrado", res.Message())
	assert.Equal(t, 7, res.Data().ID)
	assert.Equal(t, 0, sent.ID)
}

func TestResource_CreateOrUpdateEchoesInputWithoutPayload(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","message":"Actualizado"}`)
	})

	res := repos.Procedures.CreateOrUpdate(context.Background(), domain.Procedure{ID: 3, Name: "Remisión"})
	require.True(t, res.OK())
	assert.Equal(t, domain.Procedure{ID: 3, Name: "Remisión"}, res.Data())
}

func TestResource_MultipartWhenImageSelected(t *testing.T) {
	var contentType, active, folio string
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			active = r.FormValue("active")
			folio = r.FormValue("folio")
		}
		_, _ = io.WriteString(w, `{"status":"success","message":"ok"}`)
	})

	rec := domain.TechnicalRecord{Folio: "F-1", Name: "X", DoctorID: 1, Active: true,
		ImageFile: &domain.Attachment{FileName: "a.jpg", ContentType: "image/jpeg", Data: []byte{1, 2}}}
	res := repos.TechnicalRecords.CreateOrUpdate(context.Background(), rec)
	require.True(t, res.OK(), res.Message())
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data"))
	assert.Equal(t, "1", active)
	assert.Equal(t, "F-1", folio)
}

func TestResource_JSONWhenImageAlreadyPersisted(t *testing.T) {
	var contentType string
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"status":"success","message":"ok"}`)
	})

	res := repos.Penalties.CreateOrUpdate(context.Background(), domain.Penalty{ID: 4, Image: "https://cdn/x.jpg"})
	require.True(t, res.OK())
	assert.Equal(t, "application/json", contentType)
}

func TestResource_DeleteSendsID(t *testing.T) {
	var body map[string]int
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/court/delete", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"status":"success","message":"Eliminado"}`)
	})

	res := repos.Courts.Delete(context.Background(), domain.Court{ID: 12})
	require.True(t, res.OK())
	assert.Equal(t, 12, body["id"])
	assert.Equal(t, "Eliminado", res.Message())
}

func TestResource_FailureEnvelope(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"error","message":"Duplicado"}`)
	})

	res := repos.Dependences.CreateOrUpdate(context.Background(), domain.Dependence{Name: "DSP"})
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), domain.ErrRemote)
	assert.Equal(t, "Duplicado", res.Message())
}

func TestResource_UnauthorizedFailure(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	res := repos.Logs.GetAll(context.Background())
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), domain.ErrUnauthorized)
}

func TestReporter_PassesParams(t *testing.T) {
	var query string
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/penalties/report", r.URL.Path)
		query = r.URL.Query().Get("from")
		_, _ = io.WriteString(w, `{"status":"success","data":{"total":3,"by_cause":{"Riña":2,"Ebriedad":1}}}`)
	})

	res := repos.PenaltyReport.Report(context.Background(), map[string]string{"from": "2024-05-01"})
	require.True(t, res.OK())
	assert.Equal(t, "2024-05-01", query)
	assert.Equal(t, 3, res.Data().Total)
	assert.Equal(t, 2, res.Data().ByCause["Riña"])
}

func TestAuth_Login(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","message":"Bienvenido","data":{"token":"abc","permissions":["catalogo_doctor_crear"],"name":"Ana"}}`)
	})

	res := repos.Auth.Login(context.Background(), "ana", "secret")
	require.True(t, res.OK())
	assert.Equal(t, "abc", res.Data().Token)
	assert.Equal(t, "Ana", res.Data().Name)
	assert.Equal(t, []string{"catalogo_doctor_crear"}, res.Data().Permissions)
}

func TestAuth_LoginWithoutTokenFails(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","data":{"name":"Ana"}}`)
	})

	res := repos.Auth.Login(context.Background(), "ana", "secret")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), domain.ErrInvalidInput)
}

func TestResource_CreateOrUpdateToleratesNonRecordPayload(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","message":"Actualizado","data":1}`)
	})

	doc := domain.Doctor{ID: 5, Name: "Dra. Ruiz", Certificate: "999"}
	res := repos.Doctors.CreateOrUpdate(context.Background(), doc)
	require.True(t, res.OK(), res.Message())
	assert.NoError(t, res.Err())
	assert.Equal(t, "Actualizado", res.Message())
	assert.Equal(t, doc, res.Data())
}

func TestAuth_LoginUnauthorizedIsCredentialsRejection(t *testing.T) {
	repos := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	res := repos.Auth.Login(context.Background(), "ana", "wrong")
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), domain.ErrRemote)
	assert.NotErrorIs(t, res.Err(), domain.ErrUnauthorized)
	assert.Equal(t, InvalidCredentials, res.Message())
}
