package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"penalty-console/internal/adapters/rest"
	"penalty-console/internal/application"
	"penalty-console/internal/application/table"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

var (
	search   string
	sortBy   string
	desc     bool
	page     int
	pageSize int
	output   string
)

// catalog is one console list page readable from the CLI.
type catalog interface {
	list(ctx context.Context, repos *rest.Repositories, st table.State, w io.Writer) error
	export(ctx context.Context, repos *rest.Repositories, st table.State, w io.Writer) (int, error)
}

type source[T domain.Entity] struct {
	page application.CatalogPage[T]
	repo func(*rest.Repositories) ports.Repository[T]
}

func (s source[T]) fetch(ctx context.Context, repos *rest.Repositories) ([]T, error) {
	res := s.repo(repos).GetAll(ctx)
	if !res.OK() {
		if errors.Is(res.Err(), domain.ErrUnauthorized) {
			return nil, errors.New("session expired, run 'consolectl login' again")
		}
		return nil, fmt.Errorf("fetch %s: %s", s.page.Name, res.Message())
	}
	return res.Data(), nil
}

func (s source[T]) list(ctx context.Context, repos *rest.Repositories, st table.State, w io.Writer) error {
	items, err := s.fetch(ctx, repos)
	if err != nil {
		return err
	}
	p := table.Apply(items, s.page.Columns, st)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, 0, len(s.page.Columns))
	for _, col := range s.page.Columns {
		headers = append(headers, strings.ToUpper(col.Header))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range p.Items {
		cells := make([]string, 0, len(s.page.Columns))
		for _, col := range s.page.Columns {
			cells = append(cells, col.Text(row))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "page %d of %d, %d rows\n", p.Page, max(p.TotalPages, 1), p.TotalItems)
	return err
}

func (s source[T]) export(ctx context.Context, repos *rest.Repositories, st table.State, w io.Writer) (int, error) {
	items, err := s.fetch(ctx, repos)
	if err != nil {
		return 0, err
	}
	rows := table.Rows(items, s.page.Columns, st)
	return len(rows), table.ExportXLSX(w, s.page.Title, s.page.Columns, rows)
}

func entry[T domain.Entity](page application.CatalogPage[T], repo func(*rest.Repositories) ports.Repository[T]) (string, catalog) {
	return page.Name, source[T]{page: page, repo: repo}
}

var catalogs = func() map[string]catalog {
	m := map[string]catalog{}
	add := func(name string, c catalog) { m[name] = c }
	add(entry(application.DoctorsPage(), func(r *rest.Repositories) ports.Repository[domain.Doctor] { return r.Doctors }))
	add(entry(application.DependencesPage(), func(r *rest.Repositories) ports.Repository[domain.Dependence] { return r.Dependences }))
	add(entry(application.ProceduresPage(), func(r *rest.Repositories) ports.Repository[domain.Procedure] { return r.Procedures }))
	add(entry(application.CausesPage(), func(r *rest.Repositories) ports.Repository[domain.CauseOfDetention] { return r.Causes }))
	add(entry(application.CourtsPage(), func(r *rest.Repositories) ports.Repository[domain.Court] { return r.Courts }))
	add(entry(application.UsersPage(), func(r *rest.Repositories) ports.Repository[domain.User] { return r.Users }))
	add(entry(application.TechnicalRecordsPage(), func(r *rest.Repositories) ports.Repository[domain.TechnicalRecord] { return r.TechnicalRecords }))
	add(entry(application.PenaltiesPage(), func(r *rest.Repositories) ports.Repository[domain.Penalty] { return r.Penalties }))
	add(entry(application.TasksPage(), func(r *rest.Repositories) ports.Repository[domain.Task] { return r.Tasks }))
	add(entry(application.LogsPage(), func(r *rest.Repositories) ports.Repository[domain.LogEntry] { return r.Logs }))
	return m
}()

func catalogNames() []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupCatalog(name string) (catalog, error) {
	c, ok := catalogs[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q (one of: %s)", name, strings.Join(catalogNames(), ", "))
	}
	return c, nil
}

// tableState folds the search, sort and paging flags into a table state.
func tableState() (table.State, error) {
	st := table.NewState()
	st.SetSearch(search)
	if sortBy != "" {
		st.ToggleSort(sortBy)
		if desc {
			st.ToggleSort(sortBy)
		}
	}
	if pageSize > 0 {
		if err := st.SetPageSize(pageSize); err != nil {
			return st, fmt.Errorf("page size must be one of %v", st.PageSizes)
		}
	}
	st.SetPage(page)
	return st, nil
}

// listCmd prints one page of a catalog
var listCmd = &cobra.Command{
	Use:   "list <catalog>",
	Short: "Print one page of a catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

// exportCmd writes a catalog spreadsheet
var exportCmd = &cobra.Command{
	Use:   "export <catalog>",
	Short: "Write a catalog to an .xlsx spreadsheet",
	Long: `Export every row of a catalog that matches --search, in --sort order, ignoring
pagination. Writes <catalog>.xlsx unless --output is given; "-" writes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	for _, c := range []*cobra.Command{listCmd, exportCmd} {
		c.Flags().StringVarP(&search, "search", "q", "", "Search across searchable columns")
		c.Flags().StringVar(&sortBy, "sort", "", "Column key to sort by")
		c.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&pageSize, "size", 0, "Rows per page (10, 25, 50 or 100)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := lookupCatalog(args[0])
	if err != nil {
		return err
	}
	st, err := tableState()
	if err != nil {
		return err
	}
	ctx, cancel, repos, err := repositories(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	return c.list(ctx, repos, st, cmd.OutOrStdout())
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := lookupCatalog(args[0])
	if err != nil {
		return err
	}
	st, err := tableState()
	if err != nil {
		return err
	}
	ctx, cancel, repos, err := repositories(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	target := output
	if target == "" {
		target = args[0] + ".xlsx"
	}
	write := func(w io.Writer) (int, error) { return c.export(ctx, repos, st, w) }
	var n int
	if target == "-" {
		n, err = write(cmd.OutOrStdout())
	} else {
		n, err = writeFile(target, write)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", n, target)
	return nil
}

// writeFile creates path and fills it with write. The file is removed again when writing
// or closing fails, so a failed export leaves nothing behind.
func writeFile(path string, write func(io.Writer) (int, error)) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}
