package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFileExt(t *testing.T) {
	require.Equal(t, "pdf", FileExt("Report.PDF"))
	require.Equal(t, "7z", FileExt("a.b.7z"))
	require.Equal(t, "", FileExt("Makefile"))
}

func TestCleanDisplayName(t *testing.T) {
	require.Equal(t, "report.pdf", CleanDisplayName(`C:\Users\me\report.pdf`))
	require.Equal(t, "report.pdf", CleanDisplayName("../../report.pdf"))
	require.Equal(t, "", CleanDisplayName("/"))
}

func TestPasswordStrength(t *testing.T) {
	require.NoError(t, PasswordStrength("abcd1234"))
	require.Error(t, PasswordStrength(""))
	require.Error(t, PasswordStrength("a1"))
	require.Error(t, PasswordStrength("abcdefgh"))
	require.Error(t, PasswordStrength("12345678"))

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	long[0] = '1'
	require.Error(t, PasswordStrength(string(long)))
}

func TestPasswordCompare(t *testing.T) {
	hash := PasswordEncrypt("abcd1234")
	require.True(t, PasswordCompare("abcd1234", hash))
	require.False(t, PasswordCompare("abcd12345", hash))
}

type exportBase struct {
	ID uint `excel:"编号"`
}

type exportItem struct {
	exportBase
	Name    string     `excel:"名称"`
	Secret  string     `excel:"-"`
	At      time.Time  `excel:"时间"`
	Checked *time.Time `excel:"审核时间"`
}

func TestExportToExcel(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	f := excelize.NewFile()
	defer f.Close()

	err := ExportToExcel(f, "导出", []exportItem{
		{exportBase: exportBase{ID: 1}, Name: "a", Secret: "x", At: at, Checked: &at},
	})
	require.NoError(t, err)

	rows, err := f.GetRows("导出")
	require.NoError(t, err)
	require.Equal(t, []string{"编号", "名称", "时间", "审核时间"}, rows[0])
	require.Equal(t, []string{"1", "a", "2024-03-05 14:30", "2024-03-05 14:30"}, rows[1])

	require.Error(t, ExportToExcel(f, "x", 1))
}
