package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
)

const exportDateFormat = time.DateOnly

var exportHeader = []string{"Name", "Email", "Phone", "Pin Code", "Role", "Status", "Amount (GHS)", "Registration Date"}

func ExportFileName(now time.Time) string {
	return fmt.Sprintf("members_export_%s.csv", now.Format(exportDateFormat))
}

// WriteCSV writes every record with all text fields quoted. The amount column
// is left bare so spreadsheets read it as a number.
func WriteCSV(w io.Writer, records []registration.Registration) error {
	bw := bufio.NewWriter(w)

	_, err := bw.WriteString(strings.Join(exportHeader, ",") + "\n")
	if err != nil {
		return err
	}

	for _, r := range records {
		fields := []string{
			quote(r.FullName()),
			quote(r.Email),
			quote(r.Phone),
			quote(r.PinCode),
			quote(string(r.Role)),
			quote(r.Status()),
			strconv.FormatInt(r.Amount(), 10),
			quote(r.CreatedAt.Format(exportDateFormat)),
		}

		_, err = bw.WriteString(strings.Join(fields, ",") + "\n")
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
