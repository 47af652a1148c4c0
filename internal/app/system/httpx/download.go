package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// Download writes body as a file attachment instead of the JSON envelope,
// compressing with brotli or gzip when the client advertises support.
// Used by the audit-log CSV and data-export endpoints.
func Download(w http.ResponseWriter, r *http.Request, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Add("Vary", "Accept-Encoding")

	var out io.Writer = w
	switch preferredEncoding(r.Header.Get("Accept-Encoding")) {
	case "br":
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		defer bw.Close()
		out = bw
	case "gzip":
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		defer gw.Close()
		out = gw
	}
	_, _ = out.Write(body)
}

func preferredEncoding(acceptEncoding string) string {
	for _, enc := range strings.Split(acceptEncoding, ",") {
		if name, _, _ := strings.Cut(strings.TrimSpace(enc), ";"); name == "br" {
			return "br"
		}
	}
	for _, enc := range strings.Split(acceptEncoding, ",") {
		if name, _, _ := strings.Cut(strings.TrimSpace(enc), ";"); name == "gzip" {
			return "gzip"
		}
	}
	return ""
}
