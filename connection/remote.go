package connection

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"
)

// remote is the synchronous-with-internal-waits Connection described by
// spec §5: every call still returns synchronously to the caller, but may
// internally block on a round trip to settings.Host. No third-party HTTP
// or RPC client appears anywhere in the retrieval pack (the closest thing,
// moshee-sound's ktkr.us/pkg/fmtutil, is a formatting helper, not a
// transport), so this is built on stdlib net/http rather than inventing a
// dependency the pack gives no grounding for (see DESIGN.md). It talks to
// a companion file-service assumed to live at settings.Host, using a small
// REST-ish convention: folder/file operations map to PUT/DELETE/GET
// against "<host>/<path>", with isRelative paths prefixed by the server's
// own session root rather than this process's WorkingDir.
type remote struct {
	settings Settings
	logger   *log.Logger
	client   *http.Client
}

// NewRemote returns a Connection that proxies operations over HTTP to a
// companion server at settings.Host (set at Initialize time).
func NewRemote() Connection {
	return &remote{client: &http.Client{Timeout: 30 * time.Second}}
}

func (r *remote) Initialize(settings Settings, logger *log.Logger) bool {
	r.settings = settings
	r.logger = logger
	if settings.Host == "" {
		return false
	}
	resp, err := r.client.Get(r.url("/ping", false))
	if err != nil {
		r.logf("ERROR: remote connection: ping %s: %v", settings.Host, err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

func (r *remote) Shutdown() {}

func (r *remote) url(p string, isRelative bool) string {
	if isRelative {
		p = path.Join("/session", p)
	}
	return r.settings.Host + p
}

func (r *remote) MaxSessionNr() int {
	resp, err := r.client.Get(r.url("/sessions/max", false))
	if err != nil {
		return -1
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(body)))
	if err != nil {
		return -1
	}
	return n
}

func (r *remote) do(method, url string, body []byte) bool {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		r.logf("ERROR: remote connection: %s %s: %v", method, url, err)
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logf("ERROR: remote connection: %s %s: %v", method, url, err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		r.logf("ERROR: remote connection: %s %s: status %s", method, url, resp.Status)
		return false
	}
	return true
}

func (r *remote) CreateFolder(p string, isRelative, mayExist bool) bool {
	ok := r.do(http.MethodPut, r.url(path.Join(p, ".keep"), isRelative), nil)
	return ok || mayExist
}

func (r *remote) RemoveFolder(p string, isRelative bool) bool {
	return r.do(http.MethodDelete, r.url(p, isRelative), nil)
}

func (r *remote) WriteFile(data []byte, p string, isRelative, binary bool) bool {
	return r.do(http.MethodPut, r.url(p, isRelative), data)
}

func (r *remote) RemoveFile(p string, isRelative bool) bool {
	return r.do(http.MethodDelete, r.url(p, isRelative), nil)
}

func (r *remote) ProcessUpdates() bool { return true }

func (r *remote) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
