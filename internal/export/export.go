package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/fresim/internal/sim"
)

// Header identifies the exported run. Both fields are optional.
type Header struct {
	RunID string `json:"run_id,omitempty"`
	Name  string `json:"name,omitempty"`
}

type ExportData struct {
	Header
	Steps int `json:"steps"`
	*sim.Result
}

// WriteJSON writes the full result as indented JSON. Kappa at index 0 is
// null.
func WriteJSON(w io.Writer, h Header, res *sim.Result) error {
	data := ExportData{
		Header: h,
		Steps:  res.Len(),
		Result: res,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes one row per index: step, fxi, delta, kappa, zone. The
// kappa cell of index 0 is empty.
func WriteCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"step", "fxi", "delta", "kappa", "zone"}); err != nil {
		return err
	}

	for i := 0; i < res.Len(); i++ {
		kappa := ""
		if k, ok := res.Kappa(i); ok {
			kappa = strconv.FormatFloat(k, 'f', 6, 64)
		}
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(res.FXISeries[i], 'f', 6, 64),
			strconv.FormatFloat(res.DeltaSeries[i], 'f', 6, 64),
			kappa,
			string(res.Zones[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
