package service

import (
	"fmt"
	"runtime"
	"time"

	apiService "github.com/MinterTeam/minter-presale/api/v2/service"
	"github.com/MinterTeam/minter-presale/core/query"
	"github.com/marcusolsson/tui-go"
	"github.com/urfave/cli/v2"
)

const dashboardRefresh = time.Second

type dashboardData struct {
	status *apiService.StatusResponse
	sale   *query.SaleStatusResponse
}

func dashboardCMD(client *Client) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		load := func() (dashboardData, error) {
			status, err := client.Status(c.Context)
			if err != nil {
				return dashboardData{}, err
			}
			sale, err := client.SaleStatus(c.Context)
			if err != nil {
				return dashboardData{}, err
			}
			return dashboardData{status: status, sale: sale}, nil
		}

		recv, err := load()
		if err != nil {
			return err
		}

		box := tui.NewVBox()
		ui, err := tui.New(tui.NewHBox(box, tui.NewSpacer()))
		if err != nil {
			return err
		}
		ui.SetKeybinding("Esc", func() { ui.Quit() })
		ui.SetKeybinding("q", func() { ui.Quit() })
		errCh := make(chan error)

		dashboard := updateDashboard(box, recv)

		go func() { errCh <- ui.Run() }()

		for {
			select {
			case <-c.Done():
				ui.Quit()
				return c.Err()
			case err := <-errCh:
				return err
			case <-time.After(dashboardRefresh):
				recv, err := load()
				if err != nil {
					ui.Quit()
					return err
				}
				ui.Update(func() { dashboard(recv) })
			}
		}
	}
}

func updateDashboard(box *tui.Box, recv dashboardData) func(recv dashboardData) {
	progress := tui.NewProgress(progressMax(recv.sale))
	box.Append(tui.NewHBox(tui.NewLabel("Sold "), progress, tui.NewSpacer()))

	table := tui.NewTable(0, 0)
	labelHeight := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Height"), labelHeight)
	labelLastTime := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Latest Time"), labelLastTime)
	labelLastCall := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Last Call"), labelLastCall)
	labelLastCallDuration := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Last Call Processing Time"), labelLastCallDuration)
	labelPhase := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Sale Phase"), labelPhase)
	labelSold := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Sold (private / public)"), labelSold)
	labelParticipants := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Participants"), labelParticipants)
	labelMemoryUsage := tui.NewLabel("")
	table.AppendRow(tui.NewLabel("Memory Usage"), labelMemoryUsage)
	box.Append(tui.NewHBox(table, tui.NewSpacer()))
	box.Append(tui.NewSpacer())

	update := func(recv dashboardData) {
		labelHeight.SetText(fmt.Sprintf("%d", recv.status.Height))
		labelLastTime.SetText(time.Unix(int64(recv.status.LastTime), 0).UTC().Format(time.RFC3339))
		labelLastCall.SetText(fmt.Sprintf("%s at %d (code %d)", recv.status.LastCall.Type, recv.status.LastCall.Height, recv.status.LastCall.Code))
		labelLastCallDuration.SetText(fmt.Sprintf("%f sec", recv.status.LastCall.Duration))
		labelPhase.SetText(recv.sale.Phase)
		labelSold.SetText(fmt.Sprintf("%d / %d of %d", recv.sale.PrivateSoldAmount, recv.sale.PublicSoldAmount, recv.sale.DistributionAmount))
		labelParticipants.SetText(fmt.Sprintf("%d", recv.sale.ParticipantsCount))

		// the console runs apart from the node, this is its own footprint
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		labelMemoryUsage.SetText(fmt.Sprintf("%d MB", mem.Sys/1024/1024))

		progress.SetMax(progressMax(recv.sale))
		progress.SetCurrent(progressCurrent(recv.sale))
	}
	update(recv)

	return update
}

// progress widgets take int, amounts are scaled down to fit
func progressMax(sale *query.SaleStatusResponse) int {
	if sale.DistributionAmount == 0 {
		return 1
	}
	return int(sale.DistributionAmount / progressScale(sale.DistributionAmount))
}

func progressCurrent(sale *query.SaleStatusResponse) int {
	sold := sale.PrivateSoldAmount + sale.PublicSoldAmount
	if sale.DistributionAmount == 0 {
		return 0
	}
	if sold > sale.DistributionAmount {
		sold = sale.DistributionAmount
	}
	return int(sold / progressScale(sale.DistributionAmount))
}

func progressScale(total uint64) uint64 {
	scale := uint64(1)
	for total/scale > 1_000_000 {
		scale *= 10
	}
	return scale
}
