// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-pdf/fpdf"

	"github.com/olegiv/mms-go/internal/store"
)

// ExportRegistrations handles GET /api/admin/events/{eventID}/registrations/export.
// format=csv (default) or format=pdf.
func (h *Handler) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	regs, err := h.events.Registrations(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		h.writeRegistrationsPDF(w, event, regs)
		return
	}
	writeRegistrationsCSV(w, event, regs)
}

func writeRegistrationsCSV(w http.ResponseWriter, event store.Event, regs []store.EventRegistration) {
	filename := fmt.Sprintf("%s-registrations-%s.csv", event.EventID, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"registration_code", "name", "email", "phone", "registered_at"})
	for _, reg := range regs {
		_ = cw.Write([]string{
			reg.RegistrationCode,
			reg.Name,
			reg.Email,
			reg.Phone,
			reg.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}

// writeRegistrationsPDF renders an attendee sheet for check-in at the door.
func (h *Handler) writeRegistrationsPDF(w http.ResponseWriter, event store.Event, regs []store.EventRegistration) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(event.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, event.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, event.StartTime.Format("Monday, 2 January 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("%d registered", len(regs)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 8, "Code", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Name", "B", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, "Email", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Phone", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, reg := range regs {
		pdf.CellFormat(30, 7, reg.RegistrationCode, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, reg.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, reg.Email, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, reg.Phone, "", 1, "L", false, 0, "")
	}

	filename := fmt.Sprintf("%s-registrations-%s.pdf", event.EventID, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := pdf.Output(w); err != nil {
		h.logger.Error("writing registrations PDF", "event_id", event.EventID, "error", err)
	}
}

// ExportSubscribers handles GET /api/admin/subscribers/export.
func (h *Handler) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscribers.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("subscribers-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"email", "name", "subscribed_at"})
	for _, s := range subs {
		_ = cw.Write([]string{s.Email, s.Name, s.CreatedAt.Format(time.RFC3339)})
	}
	cw.Flush()
}
