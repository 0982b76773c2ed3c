package notification

import (
	"bytes"
	"text/template"

	"github.com/disnaker/sipelan/internal/complaint/domain"
)

// statusLabels carries the citizen-facing Indonesian wording for each
// lifecycle state.
var statusLabels = map[domain.Status]string{
	domain.StatusSubmitted:  "Terkirim",
	domain.StatusVerified:   "Terverifikasi",
	domain.StatusRouted:     "Didisposisikan",
	domain.StatusInProgress: "Sedang Diproses",
	domain.StatusResolved:   "Selesai",
}

// StatusLabel returns the Indonesian display label for a status.
func StatusLabel(s domain.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var receivedTmpl = template.Must(template.New("received").Parse(
	`Yth. {{.Name}},

Pengaduan Anda telah kami terima dan terdaftar dengan nomor {{.Code}}.

Judul: {{.Title}}

Simpan nomor tersebut untuk memantau perkembangan pengaduan Anda melalui
halaman lacak pengaduan.

Hormat kami,
Dinas Tenaga Kerja
`))

var statusTmpl = template.Must(template.New("status").Parse(
	`Yth. {{.Name}},

Status pengaduan Anda dengan nomor {{.Code}} telah berubah menjadi: {{.Status}}.
{{if .Note}}
Catatan petugas: {{.Note}}
{{end}}
Hormat kami,
Dinas Tenaga Kerja
`))

var dispositionTmpl = template.Must(template.New("disposition").Parse(
	`Pengaduan baru telah didisposisikan ke bidang Anda.

Nomor    : {{.Code}}
Judul    : {{.Title}}
Kategori : {{.Category}}
{{if .Rationale}}Catatan  : {{.Rationale}}
{{end}}
Mohon segera ditindaklanjuti melalui aplikasi SIPelan.
`))

var resolutionTmpl = template.Must(template.New("resolution").Parse(
	`Yth. {{.Name}},

Pengaduan Anda dengan nomor {{.Code}} telah dinyatakan selesai.
{{if .Note}}
Catatan penyelesaian: {{.Note}}
{{end}}
Terima kasih telah menggunakan layanan pengaduan Dinas Tenaga Kerja.
`))

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func reporterName(c *domain.Complaint) string {
	if c.Reporter.Name != "" {
		return c.Reporter.Name
	}
	return "Pelapor"
}

// ComplaintReceived builds the intake confirmation for the reporter.
// Returns nil when the reporter left no email address.
func ComplaintReceived(c *domain.Complaint) *Notification {
	if c.Reporter.Email == "" {
		return nil
	}
	return &Notification{
		Kind:          KindReceived,
		Recipient:     c.Reporter.Email,
		RecipientName: reporterName(c),
		Subject:       "Pengaduan Anda telah diterima - " + c.Code,
		Body: render(receivedTmpl, map[string]string{
			"Name":  reporterName(c),
			"Code":  c.Code,
			"Title": c.Title,
		}),
		ComplaintID:   c.ID,
		ComplaintCode: c.Code,
	}
}

// StatusChanged builds the status update for the reporter. The resolved
// state gets its own closing template.
func StatusChanged(c *domain.Complaint, entry *domain.StatusEntry) *Notification {
	if c.Reporter.Email == "" {
		return nil
	}

	if entry.Status == domain.StatusResolved {
		return &Notification{
			Kind:          KindResolution,
			Recipient:     c.Reporter.Email,
			RecipientName: reporterName(c),
			Subject:       "Pengaduan Anda telah selesai - " + c.Code,
			Body: render(resolutionTmpl, map[string]string{
				"Name": reporterName(c),
				"Code": c.Code,
				"Note": entry.Note,
			}),
			ComplaintID:   c.ID,
			ComplaintCode: c.Code,
		}
	}

	return &Notification{
		Kind:          KindStatus,
		Recipient:     c.Reporter.Email,
		RecipientName: reporterName(c),
		Subject:       "Perkembangan pengaduan " + c.Code,
		Body: render(statusTmpl, map[string]string{
			"Name":   reporterName(c),
			"Code":   c.Code,
			"Status": StatusLabel(entry.Status),
			"Note":   entry.Note,
		}),
		ComplaintID:   c.ID,
		ComplaintCode: c.Code,
	}
}

// Disposed builds the assignment notice for the receiving unit's mailbox.
func Disposed(c *domain.Complaint, d *domain.Disposition, unitName, unitEmail, categoryName string) *Notification {
	if unitEmail == "" {
		return nil
	}
	return &Notification{
		Kind:          KindDisposition,
		Recipient:     unitEmail,
		RecipientName: unitName,
		Subject:       "Disposisi pengaduan " + c.Code,
		Body: render(dispositionTmpl, map[string]string{
			"Code":      c.Code,
			"Title":     c.Title,
			"Category":  categoryName,
			"Rationale": d.Rationale,
		}),
		ComplaintID:   c.ID,
		ComplaintCode: c.Code,
	}
}
