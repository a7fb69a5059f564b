package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// fakeCloudflare is a minimal in-memory Cloudflare v4 API for testing.
type fakeCloudflare struct {
	mu      sync.Mutex
	token   string
	nextID  int
	zones   map[string]*zoneRow
	records map[string][]recordRow // zone id -> records in creation order
	calls   []string
}

type zoneRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	NameServers []string `json:"name_servers"`
}

type recordRow struct {
	ID       string         `json:"id"`
	ZoneID   string         `json:"zone_id"`
	ZoneName string         `json:"zone_name"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Content  string         `json:"content"`
	TTL      int            `json:"ttl"`
	Priority *int           `json:"priority,omitempty"`
	Proxied  *bool          `json:"proxied,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newFakeCloudflare(token string) *fakeCloudflare {
	return &fakeCloudflare{
		token:   token,
		zones:   map[string]*zoneRow{},
		records: map[string][]recordRow{},
	}
}

func (f *fakeCloudflare) setZoneStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones[id].Status = status
}

func (f *fakeCloudflare) stored(zoneID string) []recordRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordRow(nil), f.records[zoneID]...)
}

func (f *fakeCloudflare) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		writeEnvelope(w, http.StatusForbidden, nil, nil, apiError{Code: 10000, Message: "Authentication error"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "zones" && r.Method == http.MethodPost:
		f.createZone(w, r)
	case len(parts) == 1 && parts[0] == "zones" && r.Method == http.MethodGet:
		f.listZones(w, r)
	case len(parts) == 2 && parts[0] == "zones" && r.Method == http.MethodGet:
		f.getZone(w, parts[1])
	case len(parts) == 3 && parts[2] == "dns_records" && r.Method == http.MethodGet:
		f.listRecords(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "dns_records" && r.Method == http.MethodPost:
		f.createRecord(w, r, parts[1])
	case len(parts) == 4 && parts[2] == "dns_records":
		f.recordByID(w, r, parts[1], parts[3])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeCloudflare) createZone(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		JumpStart bool   `json:"jump_start"`
	}
	if err := readJSON(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, z := range f.zones {
		if z.Name == payload.Name {
			writeEnvelope(w, http.StatusBadRequest, nil, nil, apiError{Code: 1061, Message: payload.Name + " already exists"})
			return
		}
	}
	if payload.JumpStart {
		writeEnvelope(w, http.StatusBadRequest, nil, nil, apiError{Code: 1000, Message: "jump_start not supported by fake"})
		return
	}
	f.nextID++
	z := &zoneRow{
		ID:          fmt.Sprintf("zone-%d", f.nextID),
		Name:        payload.Name,
		Status:      "pending",
		Type:        payload.Type,
		NameServers: []string{"ada.ns.cloudflare.com", "bob.ns.cloudflare.com"},
	}
	f.zones[z.ID] = z
	writeEnvelope(w, http.StatusOK, z, nil)
}

func (f *fakeCloudflare) listZones(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := []zoneRow{}
	for _, z := range f.zones {
		if n := r.URL.Query().Get("name"); n != "" && z.Name != n {
			continue
		}
		rows = append(rows, *z)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	writeEnvelope(w, http.StatusOK, rows, map[string]int{"page": 1, "total_pages": 1})
}

func (f *fakeCloudflare) getZone(w http.ResponseWriter, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zones[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, nil, apiError{Code: 1001, Message: "Invalid zone identifier"})
		return
	}
	writeEnvelope(w, http.StatusOK, z, nil)
}

func (f *fakeCloudflare) listRecords(w http.ResponseWriter, r *http.Request, zoneID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	rows := []recordRow{}
	for _, rec := range f.records[zoneID] {
		if t := q.Get("type"); t != "" && rec.Type != t {
			continue
		}
		if n := q.Get("name"); n != "" && rec.Name != n {
			continue
		}
		rows = append(rows, rec)
	}

	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 100
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	total := (len(rows) + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > len(rows) {
		start = len(rows)
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	writeEnvelope(w, http.StatusOK, rows[start:end], map[string]int{"page": page, "per_page": perPage, "total_pages": total})
}

func (f *fakeCloudflare) createRecord(w http.ResponseWriter, r *http.Request, zoneID string) {
	var rec recordRow
	if err := readJSON(r, &rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zones[zoneID]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, nil, apiError{Code: 1001, Message: "Invalid zone identifier"})
		return
	}
	for _, existing := range f.records[zoneID] {
		if existing.Type == rec.Type && existing.Name == rec.Name && existing.Content == rec.Content {
			writeEnvelope(w, http.StatusBadRequest, nil, nil, apiError{Code: 81057, Message: "Record already exists."})
			return
		}
	}
	if rec.Type == "MX" && strings.Contains(rec.Content, " ") {
		writeEnvelope(w, http.StatusBadRequest, nil, nil, apiError{Code: 9005, Message: "Content for MX record is invalid."})
		return
	}
	f.nextID++
	rec.ID = fmt.Sprintf("rec-%d", f.nextID)
	rec.ZoneID = zoneID
	rec.ZoneName = z.Name
	f.records[zoneID] = append(f.records[zoneID], rec)
	writeEnvelope(w, http.StatusOK, rec, nil)
}

func (f *fakeCloudflare) recordByID(w http.ResponseWriter, r *http.Request, zoneID, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[zoneID]
	idx := -1
	for i, rec := range recs {
		if rec.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeEnvelope(w, http.StatusNotFound, nil, nil, apiError{Code: 81044, Message: "Record does not exist."})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeEnvelope(w, http.StatusOK, recs[idx], nil)
	case http.MethodPut:
		var rec recordRow
		if err := readJSON(r, &rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.ID, rec.ZoneID, rec.ZoneName = id, zoneID, recs[idx].ZoneName
		recs[idx] = rec
		writeEnvelope(w, http.StatusOK, rec, nil)
	case http.MethodDelete:
		f.records[zoneID] = append(recs[:idx], recs[idx+1:]...)
		writeEnvelope(w, http.StatusOK, map[string]string{"id": id}, nil)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// fakeResolver is a DNS-over-HTTPS JSON endpoint answering from a table
// keyed by "name/TYPE".
type fakeResolver struct {
	mu      sync.Mutex
	answers map[string][]map[string]any
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{answers: map[string][]map[string]any{}}
}

func (f *fakeResolver) set(name, typ string, code int, ttl int, data ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []map[string]any
	for _, d := range data {
		rows = append(rows, map[string]any{"name": name + ".", "type": code, "TTL": ttl, "data": d})
	}
	f.answers[name+"/"+typ] = rows
}

func (f *fakeResolver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/resolve" {
		http.NotFound(w, r)
		return
	}
	key := r.URL.Query().Get("name") + "/" + r.URL.Query().Get("type")
	f.mu.Lock()
	rows, ok := f.answers[key]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, map[string]any{"Status": 3})
		return
	}
	writeJSON(w, map[string]any{"Status": 0, "Answer": rows})
}

func writeEnvelope(w http.ResponseWriter, status int, result any, info map[string]int, errs ...apiError) {
	if errs == nil {
		errs = []apiError{}
	}
	body := map[string]any{
		"success": len(errs) == 0,
		"errors":  errs,
		"result":  result,
	}
	if info != nil {
		body["result_info"] = info
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
