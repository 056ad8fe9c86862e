package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
	"github.com/weforyou/ledger/pkg/zip"
)

type settingsPatch struct {
	OrgName            *string `json:"org_name"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	Address            *string `json:"address"`
	AboutUs            *string `json:"about_us"`
	PAN                *string `json:"pan"`
	RegistrationNumber *string `json:"registration_number"`
	Registration80G    *string `json:"registration_80g"`
}

func (a *App) currentSettings(r *http.Request) (*domain.SiteSettings, error) {
	s, err := a.Settings.Get(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		defaults := a.Defaults
		return &defaults, nil
	}
	return s, err
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	s, err := a.currentSettings(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var p settingsPatch
	if !a.decode(w, r, &p) {
		return
	}
	s, err := a.currentSettings(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	for dst, src := range map[*string]*string{
		&s.OrgName:            p.OrgName,
		&s.Phone:              p.Phone,
		&s.Email:              p.Email,
		&s.Address:            p.Address,
		&s.AboutUs:            p.AboutUs,
		&s.RegistrationNumber: p.RegistrationNumber,
		&s.Registration80G:    p.Registration80G,
	} {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if p.PAN != nil {
		s.PAN = strings.ToUpper(strings.TrimSpace(*p.PAN))
		if s.PAN != "" && !domain.ValidPAN(s.PAN) {
			a.fail(w, r, domain.Invalid("pan", "PAN must look like AAAAA9999A"))
			return
		}
	}
	if s.OrgName == "" {
		a.fail(w, r, domain.Invalid("org_name", "org_name is required"))
		return
	}
	s.UpdatedBy = a.currentUserID(r)
	saved, err := a.Settings.Save(r.Context(), *s)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, saved)
}

// AdminExport serves /admin/export/{type}. "all" is always a zip of CSVs.
func (a *App) AdminExport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "type")
	format := strings.ToLower(r.URL.Query().Get("format"))
	stamp := a.now().UTC().Format("20060102")

	if kind == "all" {
		files := make([]zip.File, 0, len(domain.ExportKinds))
		for _, k := range domain.ExportKinds {
			table, err := a.Reports.Export(r.Context(), k)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			data, err := tableCSV(table)
			if err != nil {
				a.fail(w, r, err)
				return
			}
			files = append(files, zip.File{Name: k + ".csv", Data: data, Modified: a.now()})
		}
		bundle, err := zip.Archive(files)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.attachment(w, "application/zip", fmt.Sprintf("export-%s.zip", stamp), bundle)
		return
	}

	table, err := a.Reports.Export(r.Context(), kind)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	switch format {
	case "", "json":
		a.json(w, http.StatusOK, map[string]any{"type": kind, "items": tableObjects(table)})
	case "csv":
		data, err := tableCSV(table)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.attachment(w, "text/csv; charset=utf-8", fmt.Sprintf("%s-%s.csv", kind, stamp), data)
	default:
		a.fail(w, r, domain.Invalid("format", "format must be json or csv"))
	}
}

// AdminDonors lists registered accounts for the admin donor directory.
func (a *App) AdminDonors(w http.ResponseWriter, r *http.Request) {
	table, err := a.Reports.Export(r.Context(), "users")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, tableObjects(table))
}

func (a *App) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	items, err := a.Campaigns.Analytics(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.CampaignAnalytics{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type refundRequest struct {
	Amount *domain.Money `json:"amount"`
	Note   string        `json:"note"`
}

func (a *App) AdminRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !a.decode(w, r, &req) {
		return
	}
	d, err := a.Ledger.Refund(r.Context(), chi.URLParam(r, "id"), ledger.RefundRequest{
		Amount:  req.Amount,
		Note:    req.Note,
		ActorID: a.currentUserID(r),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, d)
}

// AdminReconcile recomputes campaign aggregates. ?repair=true rewrites
// drifting rows.
func (a *App) AdminReconcile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	repair := false
	if v := q.Get("repair"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			a.fail(w, r, domain.Invalid("repair", "repair must be true or false"))
			return
		}
		repair = b
	}
	if repair && r.Method != http.MethodPost {
		a.fail(w, r, domain.Invalid("repair", "repairs need POST /api/admin/reconcile"))
		return
	}
	campaignID := chi.URLParam(r, "id")
	if campaignID == "" {
		campaignID = q.Get("campaign_id")
	}
	audits, err := a.Ledger.Reconcile(r.Context(), campaignID, repair)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	drift := 0
	for _, au := range audits {
		if !au.Consistent() {
			drift++
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": audits, "drift": drift})
}

func (a *App) attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func tableObjects(t *domain.ExportTable) []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				obj[col] = row[i]
			}
		}
		out = append(out, obj)
	}
	return out
}

func tableCSV(t *domain.ExportTable) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(t.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = csvCell(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(x, ";")
	case domain.Money:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
