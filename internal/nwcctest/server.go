// Package nwcctest serves a fake NWCC site directory and report generator for tests.
package nwcctest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Site is one directory row served by the fake.
type Site struct {
	ID        string
	Name      string
	Latitude  string
	Longitude string
	County    string
	// Report is the body served for the station; empty means 404.
	Report string
}

// Server is a running fake NWCC endpoint.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sites    []Site
	requests []string
}

// NewServer starts a fake serving sites and closes it on test cleanup.
func NewServer(t testing.TB, sites ...Site) *Server {
	t.Helper()
	s := &Server{sites: sites}
	mux := http.NewServeMux()
	mux.HandleFunc("/nwcc/snow-course-sites.jsp", s.handleDirectory)
	mux.HandleFunc("/report/", s.handleReport)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// DirectoryURL is a directory template with a %s region verb.
func (s *Server) DirectoryURL() string {
	return s.URL + "/nwcc/snow-course-sites.jsp?state=%s"
}

// ReportURL is a report template with {station} and {region} placeholders.
func (s *Server) ReportURL() string {
	return s.URL + "/report/{station}:{region}"
}

// Requests lists request paths in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.URL.Path)
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, DirectoryPage(s.sites...))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	id, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/report/"), ":")
	for _, site := range s.sites {
		if site.ID == id && site.Report != "" {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = fmt.Fprint(w, site.Report)
			return
		}
	}
	http.NotFound(w, r)
}

// DirectoryPage renders a directory table with a header row, one row per site,
// and a trailing row that carries no station link.
func DirectoryPage(sites ...Site) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n")
	b.WriteString("<tr><th>Station</th><th>Name</th><th>Type</th><th>State</th><th>Network</th>" +
		"<th>Latitude</th><th>Longitude</th><th>Elevation</th><th>HUC</th><th>County</th></tr>\n")
	for _, site := range sites {
		fmt.Fprintf(&b,
			"<tr><td><a href=\"/reportGenerator/view/snowmonth_hist?station=%s&amp;state=CO\">%s</a></td>"+
				"<td> %s </td><td>SNOW</td><td>CO</td><td>SNOW</td><td>%s</td><td>%s</td><td>10000</td>"+
				"<td>140100010101</td><td>%s</td></tr>\n",
			html.EscapeString(site.ID), html.EscapeString(site.ID), html.EscapeString(site.Name),
			site.Latitude, site.Longitude, html.EscapeString(site.County))
	}
	b.WriteString("<tr><td colspan=\"10\">Data provided by NRCS</td></tr>\n")
	b.WriteString("</table></body></html>\n")
	return b.String()
}

// Report renders a group-by-month report whose data block holds rows.
// Each row must carry snow.ReportFieldCount comma-separated fields.
func Report(station string, rows ...string) string {
	var b strings.Builder
	b.WriteString("#------------------------------------------------- WARNING --------------------------------------------\n")
	b.WriteString("# The data you have obtained from this automated Natural Resources Conservation Service\n")
	fmt.Fprintf(&b, "# Snow course %s\n", station)
	b.WriteString("Water Year,Jan,,,Feb,,,Mar,,,Apr,,,May,,,Jun,,\n")
	b.WriteString(",Collection Date,Snow Depth (in),Snow Water Equivalent (in),Collection Date,Snow Depth (in),Snow Water Equivalent (in)," +
		"Collection Date,Snow Depth (in),Snow Water Equivalent (in),Collection Date,Snow Depth (in),Snow Water Equivalent (in)," +
		"Collection Date,Snow Depth (in),Snow Water Equivalent (in),Collection Date,Snow Depth (in),Snow Water Equivalent (in)\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
