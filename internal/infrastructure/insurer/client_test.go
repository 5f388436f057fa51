package insurer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

func testClient(srv *httptest.Server) *Client {
	return New(Config{
		AuthBaseURL:        srv.URL,
		UploadBaseURL:      srv.URL,
		ResidentialBaseURL: srv.URL,
		ClientCode:         "96011528",
		UploadProfile:      2,
		SystemName:         "RessarcimentoFiancaui",
	}, nil)
}

func login(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	sess, err := testClient(srv).Login(context.Background(), domain.Credentials{Login: "user", Secret: "pass"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	return sess.(*Session)
}

func TestLoginSendsCredentialsAndHeaders(t *testing.T) {
	var gotBody map[string]string
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != loginPath {
			http.NotFound(w, r)
			return
		}
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	login(t, srv)

	if gotBody["usuario"] != "user" || gotBody["senha"] != "pass" {
		t.Fatalf("unexpected login payload: %v", gotBody)
	}
	if gotHeaders.Get(headerSystemName) != "RessarcimentoFiancaui" {
		t.Fatalf("missing system-name header")
	}
	if gotHeaders.Get(headerUsername) != "user" {
		t.Fatalf("missing username header")
	}
	if gotHeaders.Get(headerTrace) != "true" {
		t.Fatalf("missing trace header")
	}
}

func TestLoginFailureCarriesResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "senha inválida")
	}))
	defer srv.Close()

	_, err := testClient(srv).Login(context.Background(), domain.Credentials{Login: "user", Secret: "wrong"})
	if !domain.IsKind(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("error = %v, want ErrAuthenticationFailed", err)
	}
	if want := "senha inválida"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("error should carry the response body, got %v", err)
	}
}

func TestDiscoverAutoDropsUnmaterializedAndSequences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.WriteHeader(http.StatusOK)
		case discoverPath:
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload["pCodigoClienteOperacional"] != "96011528" {
				t.Errorf("unexpected client code: %v", payload["pCodigoClienteOperacional"])
			}
			if payload["pNumeroOcorrencia"] != float64(12345) {
				t.Errorf("claim should be numeric on the wire: %v", payload["pNumeroOcorrencia"])
			}
			fmt.Fprint(w, `{"d":[
				{"NomeDocumento":"Nota","CodigoTipoDocumento":11,"IDOnbase":100},
				{"NomeDocumento":"Foto","CodigoTipoDocumento":12,"IDOnbase":0},
				{"NomeDocumento":"Nota","CodigoTipoDocumento":11,"IDOnbase":101}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := login(t, srv)
	records, err := sess.DiscoverAuto(context.Background(), "12345")
	if err != nil {
		t.Fatalf("DiscoverAuto error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (zero storage id dropped)", len(records))
	}
	if records[0].Sequence != 1 || records[1].Sequence != 2 {
		t.Fatalf("sequences = %d,%d, want 1,2", records[0].Sequence, records[1].Sequence)
	}
	if records[0].StorageID != 100 || records[1].StorageID != 101 {
		t.Fatalf("unexpected storage ids: %+v", records)
	}
}

func TestDiscoverAutoMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"missing d":    `{"x": []}`,
		"invalid json": `{"d": [`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == loginPath {
					w.WriteHeader(http.StatusOK)
					return
				}
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			sess := login(t, srv)
			if _, err := sess.DiscoverAuto(context.Background(), "1"); !domain.IsKind(err, domain.ErrDiscoveryFailed) {
				t.Fatalf("error = %v, want ErrDiscoveryFailed", err)
			}
		})
	}
}

func TestDiscoverElectricalExplodesGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == loginPath:
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/tipodocumento/solicitados/2/1400/2/777/96011528":
			fmt.Fprint(w, `[
				{"descricao":"Laudo/Técnico","codigo":9,"documentosOcorrencia":[{"idOnbase":1},{"idOnbase":2}]},
				{"descricao":"Conta de Luz","codigo":4,"documentosOcorrencia":[{"idOnbase":null}]}
			]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := login(t, srv)
	records, err := sess.DiscoverElectrical(context.Background(), "777")
	if err != nil {
		t.Fatalf("DiscoverElectrical error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (null storage id dropped)", len(records))
	}
	if records[0].Name != "LaudoTécnico" {
		t.Fatalf("description should have slashes stripped, got %q", records[0].Name)
	}
	if records[0].Sequence != 1 || records[1].Sequence != 2 {
		t.Fatalf("sequences = %d,%d, want 1,2", records[0].Sequence, records[1].Sequence)
	}
}

func TestDiscoverElectricalMissingNestedField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprint(w, `[{"descricao":"Laudo","codigo":9}]`)
	}))
	defer srv.Close()

	sess := login(t, srv)
	if _, err := sess.DiscoverElectrical(context.Background(), "777"); !domain.IsKind(err, domain.ErrDiscoveryFailed) {
		t.Fatalf("error = %v, want ErrDiscoveryFailed", err)
	}
}

func TestResolveMaterializesLinkAndExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.WriteHeader(http.StatusOK)
		case resolvePath:
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload["pMaterializar"] != false || payload["pAqvGrd"] != false {
				t.Errorf("fixed flags must be false: %v", payload)
			}
			fmt.Fprint(w, `{"d":{"Result":"https://cdn.example/store/100.PDF?token=x"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := login(t, srv)
	rec, err := sess.Resolve(context.Background(), "12345", domain.DocumentRecord{TypeCode: 11, StorageID: 100})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if rec.Extension != "pdf" {
		t.Fatalf("extension = %q, want pdf", rec.Extension)
	}
	if rec.DownloadLink == "" {
		t.Fatalf("download link not kept")
	}
}

func TestResolveInvalidExtensionPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprint(w, `{"d":{"Result":"https://cdn.example/store/100.exe"}}`)
	}))
	defer srv.Close()

	sess := login(t, srv)
	_, err := sess.Resolve(context.Background(), "12345", domain.DocumentRecord{StorageID: 100})
	if !domain.IsKind(err, domain.ErrInvalidExtension) {
		t.Fatalf("error = %v, want ErrInvalidExtension", err)
	}
}

func TestFetchAutoBuildsFileStoreURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.WriteHeader(http.StatusOK)
		case "/file_upload/100_api.pdf":
			fmt.Fprint(w, "pdf-bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := login(t, srv)
	data, err := sess.FetchAuto(context.Background(), domain.DocumentRecord{StorageID: 100, Extension: "pdf"})
	if err != nil {
		t.Fatalf("FetchAuto error: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Fatalf("unexpected body: %q", data)
	}
}

func TestFetchElectricalFollowsIndirectLink(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.WriteHeader(http.StatusOK)
		case "/tipoDocOcorrencia/exibir/777/9/2/1":
			fmt.Fprintf(w, `{"message":"%s/cdn/laudo.jpg"}`, srvURL)
		case "/cdn/laudo.jpg":
			fmt.Fprint(w, "jpg-bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	sess := login(t, srv)
	data, ext, err := sess.FetchElectrical(context.Background(), "777", domain.DocumentRecord{TypeCode: 9, StorageID: 1})
	if err != nil {
		t.Fatalf("FetchElectrical error: %v", err)
	}
	if ext != "jpg" {
		t.Fatalf("extension = %q, want jpg", ext)
	}
	if string(data) != "jpg-bytes" {
		t.Fatalf("unexpected body: %q", data)
	}
}
