// calldesk logs incoming phone calls into a month-partitioned workbook and
// generates periodic analysis reports from them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"calldesk/analyze"
	"calldesk/config"
	"calldesk/internal/app"
	"calldesk/internal/watch"
	"calldesk/mailer"
	"calldesk/query"
	"calldesk/record"
	"calldesk/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: calldesk [-config file] <command> [flags]

commands:
  log        record an incoming call and notify the assignee
  list       print the merged call history
  employees  manage the address book (list, add, remove)
  report     generate the monthly analysis report
  status     show store and archive health
`)
	os.Exit(2)
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.EnableWatcher {
		w := watch.New(cfg.HistoryPath(), a.Invalidate)
		if err := w.Start(ctx); err != nil {
			log.Printf("watcher disabled: %v", err)
		}
	}

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "log":
		err = runLog(ctx, a, args)
	case "list":
		err = runList(a, args)
	case "employees":
		err = runEmployees(a, args)
	case "report":
		err = runReport(ctx, a, args)
	case "status":
		err = runStatus(ctx, a)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func runLog(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	from := fs.String("from", "", "employee who took the call")
	to := fs.String("to", "", "employee the call is for")
	cc := fs.String("cc", "", "employee to share with (optional)")
	name := fs.String("name", "", "caller name or company")
	phone := fs.String("phone", "", "caller phone number")
	request := fs.String("request", "", "request type (伝言のみ / 折り返しのお願い / また電話します / お問い合わせ / その他)")
	memo := fs.String("memo", "", "details")
	subject := fs.String("subject", "", "mail subject (auto-generated when empty)")
	fs.Parse(args)

	result, err := a.LogCall(ctx, record.CallRecord{
		FromPerson:  *from,
		ToPerson:    *to,
		CCPerson:    *cc,
		Counterpart: *name,
		PhoneNumber: *phone,
		RequestType: *request,
		Memo:        *memo,
	}, *subject)
	if err != nil {
		return err
	}

	if result.MailSent {
		fmt.Printf("送信完了！ 「%s」で登録しました。\n", result.Record.Counterpart)
		return nil
	}
	fmt.Printf("保存完了！ 「%s」で記録しました。（メールは未送信）\n", result.Record.Counterpart)
	if result.MailErr != nil && !errors.Is(result.MailErr, mailer.ErrNotConfigured) {
		fmt.Printf("送信エラー: %v\n", result.MailErr)
	}
	return nil
}

func runList(a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	year := fs.Int("year", 0, "filter by year (0 = all)")
	month := fs.Int("month", 0, "filter by month (0 = all)")
	fs.Parse(args)

	rows := query.FilterByPeriod(a.View(), *year, *month)
	if len(rows) == 0 {
		fmt.Println("データがありません")
		return nil
	}
	for _, row := range rows {
		fmt.Printf("%s\t%s\t%s→%s\t%s\t%s\n",
			row.Timestamp, row.Counterpart, row.FromPerson, row.ToPerson, row.RequestType, row.Memo)
	}
	return nil
}

func runEmployees(a *app.App, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		entries, err := a.Directory.Load()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s : %s\n", e.Name, e.Email)
		}
		return nil
	case "add":
		fs := flag.NewFlagSet("employees add", flag.ExitOnError)
		name := fs.String("name", "", "employee name")
		email := fs.String("email", "", "employee email")
		fs.Parse(args[1:])
		if *name == "" || *email == "" {
			return errors.New("name and email are required")
		}
		return a.Directory.Add(*name, *email)
	case "remove":
		fs := flag.NewFlagSet("employees remove", flag.ExitOnError)
		name := fs.String("name", "", "employee name")
		fs.Parse(args[1:])
		if *name == "" {
			return errors.New("name is required")
		}
		return a.Directory.Remove(*name)
	default:
		return fmt.Errorf("unknown employees subcommand %q", args[0])
	}
}

func runReport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	year := fs.Int("year", 0, "report year")
	month := fs.Int("month", 0, "report month")
	outDir := fs.String("out", ".", "output directory")
	asPDF := fs.Bool("pdf", false, "also write the PDF rendition")
	fs.Parse(args)
	if *year == 0 || *month == 0 {
		return errors.New("year and month are required")
	}

	sess := app.NewSession()
	data, err := a.MonthlyReport(ctx, sess, *year, *month)
	if err != nil {
		if errors.Is(err, analyze.ErrCorpusTooLarge) {
			return fmt.Errorf("メモの合計が大きすぎます（%d文字まで）: %w", analyze.MaxCorpusChars, err)
		}
		return err
	}

	textPath := filepath.Join(*outDir, report.Filename(*year, *month, "txt"))
	if err := os.WriteFile(textPath, []byte(report.RenderText(data)), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", textPath)

	if *asPDF {
		pdf, err := report.RenderPDF(data)
		if err != nil {
			return err
		}
		pdfPath := filepath.Join(*outDir, report.Filename(*year, *month, "pdf"))
		if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pdfPath)
	}
	return nil
}

func runStatus(ctx context.Context, a *app.App) error {
	view := a.View()
	fmt.Printf("store: %s (%d records)\n", view.Status, len(view.Rows))

	parts := map[string]int{}
	for _, row := range view.Rows {
		parts[record.PartitionKey(row.Timestamp)]++
	}
	for key, n := range parts {
		fmt.Printf("  %s: %d\n", key, n)
	}

	if err := a.Archive.Health(ctx); err != nil {
		fmt.Printf("archive: %v\n", err)
	} else {
		fmt.Println("archive: ok")
	}

	s := a.Metrics.Snapshot()
	fmt.Printf("metrics: appends=%d append_failures=%d loads=%d degraded=%d\n",
		s.Appends, s.AppendFailures, s.Loads, s.DegradedLoads)
	return nil
}
