package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/invopop/jsonschema"
	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func equalizerWriter() *equalizer.Writer {
	return equalizer.NewWriter(config.EqualizerPath())
}

func loadEqualizer() (equalizer.Profile, error) {
	return equalizerWriter().Load()
}

func parseGain(s string) (float64, error) {
	g, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "dB"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gain %q", s)
	}
	if g < equalizer.MinGain || g > equalizer.MaxGain {
		return 0, fmt.Errorf("gain %v outside [%v, %v] dB", g, equalizer.MinGain, equalizer.MaxGain)
	}
	return g, nil
}

func printProfile(p equalizer.Profile, mark bool) {
	name := style.Fg(color.Purple)(p.Preset)
	if mark {
		name = icon.Get(icon.Mark) + " " + name
	}
	fmt.Println(style.Bold(name))
	for i, g := range p.Bands {
		bar := strings.Repeat("█", int(g+equalizer.MaxGain)/4)
		fmt.Printf("  %6s %s %s\n",
			frequencyLabel(equalizer.Frequencies[i]),
			style.Fg(color.Gain(g))(fmt.Sprintf("%+5.1f dB", g)),
			style.Faint(bar),
		)
	}
}

func frequencyLabel(hz int) string {
	if hz >= 1000 {
		return fmt.Sprintf("%dk", hz/1000)
	}
	return strconv.Itoa(hz)
}

func init() {
	rootCmd.AddCommand(eqCmd)
}

// eqCmd groups the equalizer commands.
var eqCmd = &cobra.Command{
	Use:     "eq",
	Aliases: []string{"equalizer"},
	Short:   "Manage the system-wide equalizer preset",
}

func init() {
	eqCmd.AddCommand(eqListCmd)
}

var eqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in presets",
	Run: func(cmd *cobra.Command, args []string) {
		current, _ := loadEqualizer()
		for i, p := range equalizer.Presets() {
			printProfile(p, p.Preset == current.Preset)
			if i < len(equalizer.PresetNames())-1 {
				fmt.Println()
			}
		}
	},
}

func init() {
	eqCmd.AddCommand(eqApplyCmd)
}

var eqApplyCmd = &cobra.Command{
	Use:   "apply [preset]",
	Short: "Write a built-in preset to the equalizer driver",
	Example: "  quickdeck eq apply warm\n" +
		"  quickdeck eq apply bass",
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return equalizer.PresetNames(), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		p, err := equalizerWriter().Apply(args[0])
		handleErr(err)
		printSuccess("applied %s", style.Fg(color.Purple)(p.Preset))
	},
}

func init() {
	eqCmd.AddCommand(eqSetCmd)
}

var eqSetCmd = &cobra.Command{
	Use:     "set [gains...]",
	Short:   fmt.Sprintf("Write a custom profile from %d gains in dB, lowest band first", equalizer.BandCount),
	Example: "  quickdeck eq set 4 3 2 0 -1 -1 0 1 2 3",
	Args:    cobra.ExactArgs(equalizer.BandCount),
	Run: func(cmd *cobra.Command, args []string) {
		var bands equalizer.Bands
		for i, arg := range args {
			g, err := parseGain(arg)
			handleErr(err)
			bands[i] = g
		}

		p := equalizer.NewCustom(bands)
		handleErr(equalizerWriter().Write(p))
		printSuccess("applied %s", p)
	},
}

func init() {
	eqCmd.AddCommand(eqEditCmd)
}

var eqEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the current profile band by band",
	Run: func(cmd *cobra.Command, args []string) {
		w := equalizerWriter()
		current, err := w.Load()
		handleErr(err)

		bands := current.Bands
		for i := range bands {
			input := survey.Input{
				Message: fmt.Sprintf("%s Hz gain (dB):", frequencyLabel(equalizer.Frequencies[i])),
				Default: strconv.FormatFloat(bands[i], 'f', 1, 64),
			}

			var response string
			handleErr(survey.AskOne(&input, &response, survey.WithValidator(func(ans any) error {
				_, err := parseGain(fmt.Sprint(ans))
				return err
			})))

			bands[i] = lo.Must(parseGain(response))
		}

		p := equalizer.NewCustom(bands)
		if preset, ok := lo.Find(equalizer.Presets(), func(pr equalizer.Profile) bool { return pr.Bands == p.Bands }); ok {
			p = preset
		}

		handleErr(w.Write(p))
		printSuccess("applied %s", p)
	},
}

func init() {
	eqCmd.AddCommand(eqShowCmd)
	eqShowCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

var eqShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile the driver file currently holds",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := loadEqualizer()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(p))
			return
		}
		printProfile(p, false)
	},
}

func init() {
	eqCmd.AddCommand(eqSchemaCmd)
}

var eqSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of an equalizer profile",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&equalizer.Profile{})))
	},
}
