package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/urfave/cli/v2"
)

type ManagerConsole struct {
	cli *cli.App
}

func NewManagerConsole(cli *cli.App) *ManagerConsole {
	return &ManagerConsole{cli: cli}
}

func (mc *ManagerConsole) Execute(args []string) error {
	return mc.cli.Run(append(make([]string, 1, len(args)+1), args...))
}

func completer(commands cli.Commands) prompt.Completer {
	cmdHints := make([]prompt.Suggest, 0, len(commands))
	for _, command := range commands {
		cmdHints = append(cmdHints, prompt.Suggest{Text: command.Name, Description: command.Usage})
	}
	return func(doc prompt.Document) []prompt.Suggest {
		before := doc.TextBeforeCursor()
		wordsBefore := strings.Split(before, " ")
		// the command being entered is the text until the first space
		commandBefore := wordsBefore[0]
		if len(wordsBefore) == 1 {
			return prompt.FilterHasPrefix(cmdHints, commandBefore, true)
		}

		var flagHints []prompt.Suggest

		if strings.Contains(before, "--help") {
			return flagHints
		}

		for _, command := range commands {
			if !command.HasName(commandBefore) {
				continue
			}

			for _, flag := range command.VisibleFlags() {
				tag := "--" + flag.Names()[0]
				if strings.Contains(before, tag) {
					continue
				}
				neededValue := "="
				if _, ok := flag.(*cli.BoolFlag); ok {
					neededValue = " "
				}
				flagHints = append(flagHints, prompt.Suggest{
					Text:        tag + neededValue,
					Description: strings.ReplaceAll(flag.String(), "\t", " "),
				})
			}
			break
		}

		return prompt.FilterFuzzy(flagHints, wordsBefore[len(wordsBefore)-1], true)
	}
}

// Cli reads commands from the prompt until ctx is done or exit is called
func (mc *ManagerConsole) Cli(ctx context.Context) error {
	completer := completer(mc.cli.Commands)
	var history []string
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			t := prompt.Input(">>> ", completer,
				prompt.OptionHistory(history),
				prompt.OptionShowCompletionAtStart(),
			)
			if err := mc.Execute(strings.Fields(t)); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
			}
			history = append(history, t)
		}
	}
}

// ConfigureManagerConsole builds the console commands against the node REST API at apiURL
func ConfigureManagerConsole(apiURL string, out io.Writer) *ManagerConsole {
	client := NewClient(apiURL)

	app := cli.NewApp()
	app.Name = "presale"
	app.Writer = out
	app.CommandNotFound = func(ctx *cli.Context, cmd string) {
		_, _ = fmt.Fprintf(ctx.App.Writer, "No help topic for '%v'\n", cmd)
	}
	app.UseShortOptionHandling = true
	jsonFlag := &cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Required: false, Usage: "echo in json format"}

	app.Commands = []*cli.Command{
		{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "display the last committed version of the node",
			Flags: []cli.Flag{
				jsonFlag,
			},
			Action: statusCMD(client),
		},
		{
			Name:  "sale",
			Usage: "display the sale configuration and progress",
			Flags: []cli.Flag{
				jsonFlag,
			},
			Action: saleCMD(client),
		},
		{
			Name:    "participant",
			Aliases: []string{"p"},
			Usage:   "display deposits of a participant",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Required: true, Usage: "bech32 address"},
				jsonFlag,
			},
			Action: participantCMD(client),
		},
		{
			Name:    "dashboard",
			Aliases: []string{"db"},
			Usage:   "show dashboard",
			Action:  dashboardCMD(client),
		},
		{
			Name:    "exit",
			Aliases: []string{"e"},
			Usage:   "exit",
			Action:  exitCMD,
		},
	}

	for _, command := range app.Commands {
		command.Flags = append(command.Flags, cli.HelpFlag)
	}

	app.Setup()
	return NewManagerConsole(app)
}

func exitCMD(_ *cli.Context) error {
	os.Exit(0)
	return nil
}

func statusCMD(client *Client) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		response, err := client.Status(c.Context)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return printJSON(c.App.Writer, response)
		}
		return printTable(c.App.Writer, [][2]string{
			{"Version", response.Version},
			{"Network", response.Network},
			{"Initialized", fmt.Sprint(response.Initialized)},
			{"Latest Height", fmt.Sprint(response.Height)},
			{"Latest App Hash", response.AppHash},
			{"Latest Time", fmt.Sprint(response.LastTime)},
			{"Keep Last States", fmt.Sprint(response.KeepLastStates)},
		})
	}
}

func saleCMD(client *Client) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		config, err := client.SaleConfig(c.Context)
		if err != nil {
			return err
		}
		saleStatus, err := client.SaleStatus(c.Context)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return printJSON(c.App.Writer, map[string]interface{}{"config": config, "status": saleStatus})
		}
		return printTable(c.App.Writer, [][2]string{
			{"Contract", config.Contract.String()},
			{"Phase", saleStatus.Phase},
			{"Private Start", fmt.Sprint(config.PrivateStartTime)},
			{"Public Start", fmt.Sprint(config.PublicStartTime)},
			{"End", fmt.Sprint(saleStatus.EndTime)},
			{"Private Sold", fmt.Sprint(saleStatus.PrivateSoldAmount)},
			{"Public Sold", fmt.Sprint(saleStatus.PublicSoldAmount)},
			{"Distribution", fmt.Sprint(saleStatus.DistributionAmount)},
			{"Participants", fmt.Sprint(saleStatus.ParticipantsCount)},
		})
	}
}

func participantCMD(client *Client) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		response, err := client.Participant(c.Context, c.String("address"))
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return printJSON(c.App.Writer, response)
		}
		return printTable(c.App.Writer, [][2]string{
			{"Address", response.Address.String()},
			{"Fund Balance", fmt.Sprint(response.FundBalance)},
			{"Reward Balance", fmt.Sprint(response.RewardBalance)},
			{"Private Sold Fund", fmt.Sprint(response.PrivateSoldFund)},
		})
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	bb := new(bytes.Buffer)
	if err := json.Indent(bb, data, "", "  "); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, bb.String())
	return err
}

func printTable(w io.Writer, rows [][2]string) error {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, row[0]+":", row[1]); err != nil {
			return err
		}
	}
	return nil
}
