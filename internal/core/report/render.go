package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

var categoryLabels = map[alert.Category]string{
	alert.CategoryTraining:  "Eğitim",
	alert.CategoryEquipment: "Ekipman",
	alert.CategoryRisk:      "Risk",
	alert.CategoryMeeting:   "Kurul",
}

func categoryLabel(c alert.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Renderer は計画表を出力し、出力先を返します。
type Renderer interface {
	Render(ctx context.Context, r Report) (string, error)
}

// WriteText は計画表をタブ揃えのテキストで書き出します。
func WriteText(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", r.Title)
	fmt.Fprintf(tw, "Dönem: %s\tOluşturma: %s\n", r.Range.Label(), schedule.FormatDate(r.GeneratedOn))
	fmt.Fprintf(tw, "Firma: %d\tToplam İşlem: %d\n\n", len(r.Firms), r.TotalItems)

	for _, f := range r.Firms {
		fmt.Fprintf(tw, "%s  -  (%s)\n", f.FirmName, f.HazardTier.Label())
		fmt.Fprintln(tw, "Tür\tAd\tDetay\tTarih\tDurum")
		for _, it := range f.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", categoryLabel(it.Category), it.Name, it.Detail, it.Date.Format("02.01.2006"), it.Status.Label())
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// TextRenderer は計画表をディレクトリ配下のテキストファイルに書き出します。
type TextRenderer struct {
	Dir string

	create func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (t TextRenderer) Render(_ context.Context, r Report) (path string, err error) {
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}

	name := fmt.Sprintf("plan_%s_%s.txt", schedule.FormatDate(r.Range.Start), schedule.FormatDate(r.Range.End))
	path = filepath.Join(t.Dir, name)

	create := t.create
	if create == nil {
		create = createFile
	}

	f, err := create(path)
	if err != nil {
		return "", fmt.Errorf("report: create file: %w", err)
	}

	// 書き込み失敗時も Close し、書き込みのエラーを優先する
	if err := WriteText(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %s: %w", path, err)
	}
	return path, nil
}
