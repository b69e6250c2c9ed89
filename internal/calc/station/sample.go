package station

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const SampleSheet = "Sample Data"

// WriteSample writes a template workbook in the format Read expects, with
// two measurement blocks side by side.
func WriteSample(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SampleSheet); err != nil {
		return err
	}
	s, err := newSheet(f, SampleSheet)
	if err != nil {
		return err
	}
	s.add()
	s.add("İL", "ÖRNEKİL", "", "", "İL", "ÖRNEKİL")
	s.add("İLÇE", "MERKEZ", "", "", "İLÇE", "DİĞER İLÇE")
	s.add(stationMarker, "0101 (MASW)", "", "", stationMarker, "0102 (REMİ)")
	s.add("Derinlik Baş (m)", "Derinlik Son (m)", "Vs (m/s)", "", "Derinlik Baş (m)", "Derinlik Son (m)", "Vs (m/s)")
	s.add(0, 3, 350, "", 0, 5, 250)
	s.add(3, 8, 450, "", 5, 12, 400)
	s.add(8, 20, 600, "", 12, 30, 750)
	s.add(20, 35, 800, "", 30, 55, 900)
	s.add()
	s.add()
	s.add("Notes:")
	s.add("- Put each province on its own sheet.")
	s.add("- Several measurements can share a sheet, side by side with one blank column between them.")
	s.add("- Every block needs the province, district and station code rows above its header.")
	s.add("- The header row must read 'Derinlik Baş (m)', 'Derinlik Son (m)' and 'Vs (m/s)'.")
	s.add("- Density is not read from this template; the default of 1900 kg/m3 is used.")
	s.add("- Depths and Vs values must be positive numbers.")
	s.widths(18, 18, 15, 5, 18, 18, 15)
	if s.err != nil {
		return s.err
	}
	_, err = f.WriteTo(w)
	return err
}
