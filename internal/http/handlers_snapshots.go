package http

import (
	"errors"
	"net/http"

	"despesas/internal/log"
)

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string][]string{"snapshots": names}).Send(w)
}

func (s *Server) handleUploadSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		writeStatus(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeStatus(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res, err := s.svc.IngestFile(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Snapshot uploaded",
		log.NewFields().WithSnapshot(res.Name).WithIngest(res.RowsRead, res.RowsKept, res.MissingDates, res.DegradedAmounts).ToSlice()...)
	NewJSONResponse().Status(http.StatusCreated).Body(res).Send(w)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := parseImportRequest(w, r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.ImportSheet(r.Context(), req.SpreadsheetID, req.Range, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(res).Send(w)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	records, err := s.svc.Records(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(snapshotResponse{Name: name, Records: toRecordResponses(records)}).Send(w)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context(), r.PathValue("name"), parseCriteria(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(dashboardResponse{
		Name:    d.Name,
		Records: toRecordResponses(d.Records),
		Summary: d.Summary,
	}).Send(w)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.svc.Options(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(opts).Send(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"events": events}).Send(w)
}
