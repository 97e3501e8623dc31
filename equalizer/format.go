package equalizer

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/quickdeck/quickdeck/constant"
	"github.com/samber/lo"
)

const (
	headerPrefix    = "# " + constant.App + " preset:"
	preampPrefix    = "Preamp:"
	graphicEQPrefix = "GraphicEQ:"
)

// Format renders p in Equalizer APO syntax.
//
//	# quickdeck preset: Warm
//	Preamp: -3.0 dB
//	GraphicEQ: 31 3.0; 62 3.0; 125 2.0; ...
func Format(p Profile) []byte {
	p = p.Normalize()

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n", headerPrefix, p.Preset)
	fmt.Fprintf(&b, "%s %.1f dB\n", preampPrefix, p.Preamp())

	pairs := lo.Map(Frequencies[:], func(freq int, i int) string {
		return fmt.Sprintf("%d %.1f", freq, p.Bands[i])
	})
	fmt.Fprintf(&b, "%s %s\n", graphicEQPrefix, strings.Join(pairs, "; "))

	return b.Bytes()
}

// Parse reads a profile written by Format. A file without the header line is named after the
// preset its bands match, or Custom.
func Parse(data []byte) (Profile, error) {
	var (
		profile   Profile
		preset    string
		seenBands bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(text, headerPrefix):
			preset = strings.TrimSpace(strings.TrimPrefix(text, headerPrefix))
		case strings.HasPrefix(text, graphicEQPrefix):
			bands, err := parseGraphicEQ(strings.TrimPrefix(text, graphicEQPrefix))
			if err != nil {
				return Profile{}, fmt.Errorf("line %d: %w", line, err)
			}
			profile.Bands = bands
			seenBands = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Profile{}, err
	}

	if !seenBands {
		return Profile{}, fmt.Errorf("no %s line", strings.TrimSuffix(graphicEQPrefix, ":"))
	}

	if preset == "" {
		preset = matchPreset(profile.Bands)
	}
	profile.Preset = preset

	return profile.Normalize(), nil
}

func parseGraphicEQ(value string) (Bands, error) {
	var (
		bands Bands
		seen  [BandCount]bool
	)

	for _, pair := range strings.Split(value, ";") {
		fields := strings.Fields(pair)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return bands, fmt.Errorf("malformed band %q", strings.TrimSpace(pair))
		}

		freq, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return bands, fmt.Errorf("frequency %q: %w", fields[0], err)
		}
		gain, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return bands, fmt.Errorf("gain %q: %w", fields[1], err)
		}

		idx := lo.IndexOf(Frequencies[:], int(freq))
		if idx < 0 || float64(Frequencies[idx]) != freq {
			return bands, fmt.Errorf("unsupported band frequency %s Hz", fields[0])
		}
		bands[idx] = gain
		seen[idx] = true
	}

	if missing := lo.Filter(Frequencies[:], func(_ int, i int) bool { return !seen[i] }); len(missing) > 0 {
		return bands, fmt.Errorf("missing bands %v Hz", missing)
	}
	return bands, nil
}
