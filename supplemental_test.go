package ooldml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

const supplementalData = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE supplementalData SYSTEM "../../common/dtd/ldmlSupplemental.dtd">
<supplementalData>
	<version number="$Revision$"/>
	<currencyData>
		<fractions>
			<info iso4217="ADP" digits="0" rounding="0"/>
			<info iso4217="JPY" digits="0" rounding="0"/>
			<info iso4217="KWD" digits="3" rounding="0"/>
			<info iso4217="DEFAULT" digits="2" rounding="0"/>
		</fractions>
	</currencyData>
	<weekData>
		<minDays count="1" territories="001 GU UM US VI"/>
		<minDays count="4" territories="AD AN AT BE DE"/>
		<firstDay day="mon" territories="001 AD AT DE"/>
		<firstDay day="sun" territories="US JP"/>
		<firstDay day="sun" territories="GB" alt="variant"/>
	</weekData>
	<measurementData>
		<measurementSystem type="US" territories="LR MM US"/>
		<measurementSystem type="UK" territories="GB"/>
	</measurementData>
</supplementalData>`

const supplementalMetadata = `<?xml version="1.0" encoding="UTF-8" ?>
<supplementalData>
	<metadata>
		<alias>
			<territoryAlias type="DD" replacement="DE"/>
			<territoryAlias type="SU" replacement="RU AM AZ"/>
		</alias>
	</metadata>
</supplementalData>`

func TestSupplemental(t *testing.T) {
	s := NewSupplemental()
	test.Error(t, s.Read(strings.NewReader(supplementalData)))
	test.Error(t, s.Read(strings.NewReader(supplementalMetadata)))

	test.T(t, s.Digits("JPY"), 0)
	test.T(t, s.Digits("KWD"), 3)
	test.T(t, s.Digits("EUR"), 2)

	firstDay, minDays := s.WeekData("DE")
	test.T(t, firstDay, "mon")
	test.T(t, minDays, 4)
	firstDay, minDays = s.WeekData("US")
	test.T(t, firstDay, "sun")
	test.T(t, minDays, 1)
	firstDay, minDays = s.WeekData("GB")
	test.T(t, firstDay, "mon")
	test.T(t, minDays, 1)

	test.T(t, s.MeasurementSystem("US"), "US")
	test.T(t, s.MeasurementSystem("GB"), "UK")
	test.T(t, s.MeasurementSystem("DE"), "metric")

	test.T(t, s.Territory("DD"), "DE")
	test.T(t, s.Territory("SU"), "RU")
	test.T(t, s.Territory("DE"), "DE")
}

func TestSupplementalDefaultDigits(t *testing.T) {
	s := NewSupplemental()
	test.T(t, s.Digits("EUR"), 2)
}

func TestReadSupplemental(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadSupplemental(dir)
	test.That(t, err != nil, "supplementalData.xml is required")

	test.Error(t, os.WriteFile(filepath.Join(dir, "supplementalData.xml"), []byte(supplementalData), 0o644))
	s, err := ReadSupplemental(dir)
	test.Error(t, err)
	test.T(t, s.Digits("JPY"), 0)
	test.T(t, s.Territory("DD"), "DD")

	test.Error(t, os.WriteFile(filepath.Join(dir, "supplementalMetadata.xml"), []byte(supplementalMetadata), 0o644))
	s, err = ReadSupplemental(dir)
	test.Error(t, err)
	test.T(t, s.Territory("DD"), "DE")

	test.Error(t, os.WriteFile(filepath.Join(dir, "supplementalMetadata.xml"), []byte("<supplementalData>"), 0o644))
	_, err = ReadSupplemental(dir)
	test.That(t, err != nil)
}
