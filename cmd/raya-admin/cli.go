package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sekawan-grup/raya/internal/apiclient"
	"github.com/sekawan-grup/raya/internal/auth"
	"github.com/sekawan-grup/raya/internal/backoffice"
	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/utils"
)

const usage = `usage: raya-admin <command> [flags]

commands:
  login       -u <username> [-p <password>] [-remember]
  logout
  whoami
  passwd      -current <pw> -new <pw> -confirm <pw>
  dashboard
  categories  list | add -name <name> [-order n] | edit -id <id> -name <name> [-order n] | rm -id <id>
  links       list [-category id] | add -category <id> -title .. -url .. -image .. [-price ..] [-order n] [-inactive]
              edit -category <id> -id <id> [same flags] | rm -category <id> -id <id>
  upload      -file <path>
  products

RAYA_API_URL overrides the API base URL.
`

// Route paths of the screens behind each command.
const (
	pathCategories = "/admin/categories"
	pathLinks      = "/admin/links"
	pathPassword   = "/admin/change-password"
	pathUpload     = "/admin/upload"
	pathProducts   = "/products"
)

type cli struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	tokens backoffice.TokenStore
	guard  *auth.Guard
	client *apiclient.Client
	log    logger.Logger
}

// run executes one command and returns the process exit code.
func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]

	if cmd == "login" {
		return c.exit(c.login(ctx, rest))
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprint(c.out, usage)
		return 0
	}

	router := backoffice.NewRouter(c.guard, c.log)
	router.Handle(backoffice.LoginPath, func(context.Context) error {
		fmt.Fprintln(c.errOut, "🔒 Sesi tidak valid atau sudah berakhir. Jalankan: raya-admin login -u <username>")
		return nil
	})
	router.Handle("/logout", func(ctx context.Context) error { return c.logout(ctx) })
	router.Handle(pathProducts, func(ctx context.Context) error { return c.products(ctx) })
	router.Protect("/whoami", func(context.Context) error { return c.whoami() })
	router.Protect(backoffice.DashboardPath, func(ctx context.Context) error { return c.dashboard(ctx) })
	router.Protect(pathPassword, func(ctx context.Context) error { return c.passwd(ctx, rest) })
	router.Protect(pathCategories, func(ctx context.Context) error { return c.categories(ctx, rest) })
	router.Protect(pathLinks, func(ctx context.Context) error { return c.links(ctx, rest) })
	router.Protect(pathUpload, func(ctx context.Context) error { return c.upload(ctx, rest) })

	paths := map[string]string{
		"logout":     "/logout",
		"whoami":     "/whoami",
		"dashboard":  backoffice.DashboardPath,
		"passwd":     pathPassword,
		"categories": pathCategories,
		"links":      pathLinks,
		"upload":     pathUpload,
		"products":   pathProducts,
	}
	path, ok := paths[cmd]
	if !ok {
		fmt.Fprintf(c.errOut, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	err := router.Navigate(ctx, path)
	if errors.Is(err, backoffice.ErrLoginRequired) {
		return 3
	}
	return c.exit(err)
}

func (c *cli) exit(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(c.errOut, "❌ %v\n", err)
		return 1
	}
}

var errUsage = errors.New("usage")

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// screenError prefers the message a screen stored for display.
func screenError(err error, shown string) error {
	if shown != "" && !errors.Is(err, backoffice.ErrBusy) {
		return errors.New(shown)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────
// Session
// ─────────────────────────────────────────────────────────────────

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (read from stdin when empty)")
	remember := fs.Bool("remember", false, "keep the session after this terminal closes")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	if *password == "" {
		fmt.Fprint(c.errOut, "Password: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	flow := backoffice.NewLoginFlow(c.client, c.tokens, c.log)
	if err := flow.Submit(ctx, *username, *password, *remember); err != nil {
		return screenError(err, flow.State().Error)
	}

	fmt.Fprintf(c.out, "✅ Login berhasil sebagai %s\n", *username)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	err := backoffice.Logout(ctx, c.client, c.tokens, c.log)
	fmt.Fprintln(c.out, "👋 Sesi dihapus")
	if err != nil {
		c.log.Debug("logout", logger.Error(err))
	}
	return nil
}

func (c *cli) whoami() error {
	claims, err := c.guard.Claims()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (id %d), berlaku sampai %s\n",
		claims.Username, claims.AdminID, claims.Expiry().Local().Format("2006-01-02 15:04"))
	return nil
}

func (c *cli) passwd(ctx context.Context, args []string) error {
	fs := c.flags("passwd")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	p := backoffice.NewPasswordChanger(c.client, c.log)
	if err := p.Submit(ctx, *current, *next, *confirm); err != nil {
		if errors.Is(err, backoffice.ErrValidation) {
			for _, r := range backoffice.UnmetRequirements(*next) {
				fmt.Fprintf(c.errOut, "  ✗ %s\n", r)
			}
		}
		return screenError(err, p.State().Error)
	}
	fmt.Fprintf(c.out, "✅ %s\n", p.State().Success)
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Screens
// ─────────────────────────────────────────────────────────────────

func (c *cli) dashboard(ctx context.Context) error {
	stats, err := backoffice.NewDashboardHome(c.client, c.log).Load(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Total produk:    %d\n", stats.TotalLinks)
	fmt.Fprintf(c.out, "Kategori:        %d (%s)\n", stats.CategoryCount, strings.Join(stats.CategoryNames, ", "))
	fmt.Fprintf(c.out, "Produk aktif:    %d (%d%% dari total produk)\n", stats.ActiveLinks, stats.ActivePercent)
	if len(stats.Recent) > 0 {
		fmt.Fprintln(c.out, "\nBaru ditambahkan:")
		c.printLinks(stats.Recent)
	}
	return nil
}

func (c *cli) products(ctx context.Context) error {
	products, err := backoffice.NewProductPage(c.client).Load(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKETPLACE\tPRODUK\tHARGA\tLINK")
	for _, p := range products {
		link := p.Link
		if p.ComingSoon() {
			link = "(segera hadir)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Marketplace, p.Name, p.Price, link)
	}
	return tw.Flush()
}

func (c *cli) categories(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	m := backoffice.NewCategoryManager(c.client, c.log)

	fs := c.flags("categories " + sub)
	id := fs.Uint("id", 0, "category id")
	name := fs.String("name", "", "category name")
	order := fs.Int("order", 0, "display order (0 appends)")
	if err := c.parse(fs, rest); err != nil {
		return err
	}

	var err error
	switch sub {
	case "list":
		err = m.Load(ctx)
	case "add":
		err = m.Create(ctx, *name, *order)
	case "edit":
		err = m.Update(ctx, *id, *name, *order)
	case "rm":
		err = m.Delete(ctx, *id)
	default:
		fmt.Fprintf(c.errOut, "unknown categories command %q\n", sub)
		return errUsage
	}
	if err != nil {
		return screenError(err, m.State().Error)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAMA\tURUTAN")
	for _, cat := range m.State().Categories {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", cat.ID, cat.Name, cat.Order)
	}
	return tw.Flush()
}

func (c *cli) links(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	m := backoffice.NewLinkManager(c.client, c.log)
	m.OnChange(func(s backoffice.LinkState) {
		for _, cf := range s.Conflicts {
			c.log.Debug("conflict", logger.String("op", cf.Op), logger.Uint("link_id", cf.LinkID))
		}
	})

	fs := c.flags("links " + sub)
	category := fs.Uint("category", 0, "category id (default: first category)")
	id := fs.Uint("id", 0, "link id")
	title := fs.String("title", "", "product title")
	url := fs.String("url", "", "marketplace URL")
	image := fs.String("image", "", "image URL")
	price := fs.String("price", "", "price in rupiah, ex: 1631000")
	order := fs.Int("order", 0, "display order (0 appends)")
	inactive := fs.Bool("inactive", false, "hide from the public product page")
	if err := c.parse(fs, rest); err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["price"] {
		if _, priceStr := domain.ParsePriceInput(*price); priceStr == "" {
			fmt.Fprintf(c.errOut, "harga harus berupa angka, ex: 1631000 atau 1631000.50 (got %q)\n", *price)
			return errUsage
		}
	}

	if err := m.Load(ctx); err != nil {
		return screenError(err, m.State().Error)
	}
	if *category != 0 {
		if err := m.Select(ctx, *category); err != nil {
			return screenError(err, m.State().Error)
		}
	}

	var err error
	switch sub {
	case "list":
	case "add":
		form := backoffice.NewLinkForm()
		form.Title, form.URL, form.ImageURL = *title, *url, *image
		form.SetPrice(*price)
		form.Order = *order
		form.IsActive = !*inactive
		m.SetForm(form)
		err = m.Create(ctx)
	case "edit":
		current := findLink(m.State().ActiveLinks(), *id)
		if current == nil {
			return fmt.Errorf("link %d tidak ditemukan di kategori ini", *id)
		}
		edited := *current
		if set["title"] {
			edited.Title = *title
		}
		if set["url"] {
			edited.URL = *url
		}
		if set["image"] {
			edited.ImageURL = *image
		}
		if set["price"] {
			edited.Price, edited.PriceStr = domain.ParsePriceInput(*price)
		}
		if set["order"] {
			edited.Order = *order
		}
		if set["inactive"] {
			edited.IsActive = !*inactive
		}
		err = m.Update(ctx, edited)
	case "rm":
		err = m.Delete(ctx, *id)
	default:
		fmt.Fprintf(c.errOut, "unknown links command %q\n", sub)
		return errUsage
	}

	state := m.State()
	for field, msg := range state.FieldErrors {
		fmt.Fprintf(c.errOut, "  ✗ %s: %s\n", field, msg)
	}
	for _, cf := range state.Conflicts {
		fmt.Fprintf(c.errOut, "⚠️  server menyimpan versi lain dari link %d (%s)\n", cf.LinkID, cf.Op)
	}
	if err != nil {
		return screenError(err, state.Error)
	}

	if state.Active != nil {
		fmt.Fprintf(c.out, "Kategori: %s\n", state.Active.Name)
	}
	c.printLinks(state.ActiveLinks())
	return nil
}

func (c *cli) upload(ctx context.Context, args []string) error {
	fs := c.flags("upload")
	path := fs.String("file", "", "image file")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		fs.PrintDefaults()
		return errUsage
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer utils.MustClose(f, c.log)

	url, err := c.client.UploadImage(ctx, filepath.Base(*path), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, url)
	return nil
}

func (c *cli) printLinks(links []domain.Link) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJUDUL\tHARGA\tAKTIF\tURUTAN\tURL")
	for _, l := range links {
		active := "ya"
		if !l.IsActive {
			active = "tidak"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", l.ID, l.Title, l.PriceStr, active, l.Order, l.URL)
	}
	_ = tw.Flush()
}

// subcommand splits "add -name x" into "add" and its flags. Flags alone
// select def.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func findLink(links []domain.Link, id uint) *domain.Link {
	for i := range links {
		if links[i].ID == id {
			return &links[i]
		}
	}
	return nil
}
