// Command admin is a read-only terminal dashboard over the linkgrab store:
// aggregate counts plus the most recently recorded links.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rivo/tview"

	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/repository"
	"github.com/linkgrab/linkgrab/internal/service"
)

const (
	recentLimit     = 30
	refreshInterval = 5 * time.Second
)

type dashboard struct {
	app    *tview.Application
	stats  *service.StatsService
	header *tview.TextView
	counts *tview.TextView
	table  *tview.Table
	footer *tview.TextView
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := repository.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	stats := service.NewStatsService(
		repository.NewSQLiteUserRepository(db),
		repository.NewSQLiteFileRepository(db),
		repository.NewSQLiteLinkRepository(db),
	)

	d := newDashboard(stats)
	if err := d.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func newDashboard(stats *service.StatsService) *dashboard {
	d := &dashboard{
		app:   tview.NewApplication(),
		stats: stats,
	}

	d.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[::b]linkgrab admin")
	d.header.SetBackgroundColor(tcell.ColorDarkBlue)

	d.counts = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	d.table = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)
	d.table.SetBorder(true).SetTitle(" Recent links ")

	d.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]r[white]:Refresh [yellow]q[white]:Quit")
	d.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 1, 0, false).
		AddItem(d.counts, 3, 0, false).
		AddItem(d.table, 0, 1, true).
		AddItem(d.footer, 1, 0, false)

	d.app.SetRoot(flex, true)
	return d
}

func (d *dashboard) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			d.app.Stop()
			return nil
		case 'r':
			go d.refresh(ctx)
			return nil
		}
		return event
	})

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		d.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.refresh(ctx)
			}
		}
	}()

	return d.app.Run()
}

func (d *dashboard) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stats, err := d.stats.Stats(ctx)
	if err != nil {
		d.app.QueueUpdateDraw(func() {
			d.counts.SetText(fmt.Sprintf("[red]store unavailable: %v", err))
		})
		return
	}
	links, err := d.stats.RecentLinks(ctx, recentLimit)
	if err != nil {
		d.app.QueueUpdateDraw(func() {
			d.counts.SetText(fmt.Sprintf("[red]store unavailable: %v", err))
		})
		return
	}

	d.app.QueueUpdateDraw(func() {
		d.counts.SetText(fmt.Sprintf(
			"\n[green]%d[white] users   [green]%d[white] files   [green]%d[white] links",
			stats.Users, stats.Files, stats.Links,
		))

		d.table.Clear()
		for i, h := range []string{"ID", "URL", "Platform", "Recorded"} {
			cell := tview.NewTableCell(h).
				SetTextColor(tcell.ColorYellow).
				SetSelectable(false)
			d.table.SetCell(0, i, cell)
		}
		for i, link := range links {
			row := i + 1
			d.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", link.ID)))
			d.table.SetCell(row, 1, tview.NewTableCell(link.URL).SetExpansion(2))
			d.table.SetCell(row, 2, tview.NewTableCell(string(link.Platform)))
			d.table.SetCell(row, 3, tview.NewTableCell(link.CreatedAt.Format("Jan 2 15:04")))
		}
		if len(links) == 0 {
			d.table.SetCell(1, 0, tview.NewTableCell("No links recorded yet").
				SetTextColor(tcell.ColorYellow))
		}
	})
}
