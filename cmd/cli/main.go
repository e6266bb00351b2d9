package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/ordertrack/internal/repository"
	"github.com/aryan0dhankhar/ordertrack/internal/service"
	"github.com/aryan0dhankhar/ordertrack/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	client := newAPIClient()

	var err error
	switch command {
	case "auth":
		err = handleAuth(client, args)
	case "projects":
		err = handleProjects(client, args)
	case "orders":
		err = handleOrders(client, args)
	case "admin":
		err = handleAdmin(client, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func handleAuth(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: ordertrack auth <register|login|logout|me>")
		return nil
	}

	switch args[0] {
	case "register":
		return register(c, args[1:])
	case "login":
		return login(c, args[1:])
	case "logout":
		return logout(c)
	case "me":
		return whoAmI(c)
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func handleProjects(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: ordertrack projects <list|create>")
		return nil
	}

	switch args[0] {
	case "list":
		return listProjects(c)
	case "create":
		return createProject(c, args[1:])
	default:
		return fmt.Errorf("unknown projects command: %s", args[0])
	}
}

func handleOrders(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: ordertrack orders <list|create|get|update|delete>")
		return nil
	}

	switch args[0] {
	case "list":
		return listOrders(c, args[1:])
	case "create":
		return createOrder(c, args[1:])
	case "get":
		return getOrder(c, args[1:])
	case "update":
		return updateOrder(c, args[1:])
	case "delete":
		return deleteOrder(c, args[1:])
	default:
		return fmt.Errorf("unknown orders command: %s", args[0])
	}
}

func handleAdmin(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: ordertrack admin <users|approve|reject|bootstrap>")
		return nil
	}

	switch args[0] {
	case "users":
		return listUsers(c, args[1:])
	case "approve":
		return setUserStatus(c, args[1:], domain.UserStatusApproved)
	case "reject":
		return setUserStatus(c, args[1:], domain.UserStatusRejected)
	case "bootstrap":
		return bootstrapAdmin(args[1:])
	default:
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

// Auth commands
func credentialFlags(name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		fs.PrintDefaults()
		return "", "", fmt.Errorf("email and password are required")
	}
	return *email, *password, nil
}

func register(c *apiClient, args []string) error {
	email, password, err := credentialFlags("register", args)
	if err != nil {
		return err
	}

	var out struct {
		User    domain.Identity `json:"user"`
		Message string          `json:"message"`
	}
	if err := c.do("POST", "/auth/register", service.Credentials{Email: email, Password: password}, &out); err != nil {
		return err
	}
	fmt.Printf("✓ %s (user %d)\n", out.Message, out.User.ID)
	return nil
}

func login(c *apiClient, args []string) error {
	email, password, err := credentialFlags("login", args)
	if err != nil {
		return err
	}

	if err := c.do("POST", "/auth/login", service.Credentials{Email: email, Password: password}, nil); err != nil {
		return err
	}
	fmt.Printf("✓ Logged in as: %s\n", email)
	return nil
}

func logout(c *apiClient) error {
	err := c.do("POST", "/auth/logout", nil, nil)
	c.clearSession()
	if err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

func whoAmI(c *apiClient) error {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.do("GET", "/auth/me", nil, &out); err != nil {
		return err
	}
	fmt.Printf("✓ %s (id %d, role %s, status %s)\n", out.User.Email, out.User.ID, out.User.Role, out.User.Status)
	return nil
}

// Project commands
func listProjects(c *apiClient) error {
	var projects []domain.Project
	if err := c.do("GET", "/projects", nil, &projects); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func createProject(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("projects create", flag.ExitOnError)
	name := fs.String("name", "", "project name")
	description := fs.String("description", "", "project description")
	_ = fs.Parse(args)

	in := service.CreateProjectInput{Name: *name}
	if *description != "" {
		in.Description = description
	}

	var project domain.Project
	if err := c.do("POST", "/projects", in, &project); err != nil {
		return err
	}
	fmt.Printf("✓ Project created: %d %s\n", project.ID, project.Name)
	return nil
}

// Order commands
func listOrders(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("orders list", flag.ExitOnError)
	project := fs.Int64("project", 0, "project ID (required)")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 0, "page size")
	payment := fs.String("payment", "", "payment status filter")
	delivery := fs.String("delivery", "", "delivery status filter")
	search := fs.String("search", "", "title search")
	_ = fs.Parse(args)

	q := url.Values{}
	q.Set("projectId", strconv.FormatInt(*project, 10))
	q.Set("page", strconv.Itoa(*page))
	if *limit > 0 {
		q.Set("limit", strconv.Itoa(*limit))
	}
	if *payment != "" {
		q.Set("paymentStatus", *payment)
	}
	if *delivery != "" {
		q.Set("deliveryStatus", *delivery)
	}
	if *search != "" {
		q.Set("search", *search)
	}

	var out service.OrderPage
	if err := c.do("GET", "/orders?"+q.Encode(), nil, &out); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQTY\tPAYMENT\tDELIVERY\tCREATED")
	for _, o := range out.Orders {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", o.ID, o.Title, o.Quantity, o.PaymentStatus, o.DeliveryStatus,
			o.CreatedAt.Format(time.DateTime))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	p := out.Pagination
	fmt.Printf("page %d of %d (%d orders)\n", p.Page, p.Pages, p.Total)
	return nil
}

func createOrder(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("orders create", flag.ExitOnError)
	project := fs.Int64("project", 0, "project ID (required)")
	title := fs.String("title", "", "order title (required)")
	description := fs.String("description", "", "description")
	productURL := fs.String("url", "", "product URL")
	quantity := fs.Int("quantity", 1, "quantity")
	invoice := fs.String("invoice", "", "invoice number")
	payment := fs.String("payment", "", "payment status")
	delivery := fs.String("delivery", "", "delivery status")
	_ = fs.Parse(args)

	in := service.CreateOrderInput{
		ProjectID:      *project,
		Title:          *title,
		Quantity:       quantity,
		PaymentStatus:  *payment,
		DeliveryStatus: *delivery,
	}
	if *description != "" {
		in.Description = description
	}
	if *productURL != "" {
		in.ProductURL = productURL
	}
	if *invoice != "" {
		in.InvoiceNumber = invoice
	}

	var order domain.Order
	if err := c.do("POST", "/orders", in, &order); err != nil {
		return err
	}
	fmt.Printf("✓ Order created: %d %s\n", order.ID, order.Title)
	return nil
}

func orderID(args []string, usage string) (int64, []string, error) {
	if len(args) < 1 {
		return 0, nil, fmt.Errorf("usage: ordertrack orders %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid order ID: %s", args[0])
	}
	return id, args[1:], nil
}

func getOrder(c *apiClient, args []string) error {
	id, _, err := orderID(args, "get <order-id>")
	if err != nil {
		return err
	}

	var order domain.Order
	if err := c.do("GET", fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return err
	}
	printOrder(os.Stdout, &order)
	return nil
}

func updateOrder(c *apiClient, args []string) error {
	id, rest, err := orderID(args, "update <order-id> [flags]")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("orders update", flag.ExitOnError)
	fs.String("title", "", "order title")
	fs.String("description", "", "description (empty clears it)")
	fs.String("url", "", "product URL (empty clears it)")
	fs.Int("quantity", 1, "quantity")
	fs.String("invoice", "", "invoice number (empty clears it)")
	fs.String("payment", "", "payment status")
	fs.String("delivery", "", "delivery status")
	_ = fs.Parse(rest)

	fields := map[string]string{
		"title":       "title",
		"description": "description",
		"url":         "productUrl",
		"invoice":     "invoiceNumber",
		"payment":     "paymentStatus",
		"delivery":    "deliveryStatus",
	}
	patch := map[string]any{}
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		value := f.Value.String()
		if f.Name == "quantity" {
			n, err := strconv.Atoi(value)
			if err != nil {
				flagErr = fmt.Errorf("invalid quantity: %s", value)
				return
			}
			patch["quantity"] = n
			return
		}
		key := fields[f.Name]
		if value == "" && (key == "description" || key == "productUrl" || key == "invoiceNumber") {
			patch[key] = nil
			return
		}
		patch[key] = value
	})
	if flagErr != nil {
		return flagErr
	}
	if len(patch) == 0 {
		fs.PrintDefaults()
		return fmt.Errorf("nothing to update")
	}

	var order domain.Order
	if err := c.do("PATCH", fmt.Sprintf("/orders/%d", id), patch, &order); err != nil {
		return err
	}
	printOrder(os.Stdout, &order)
	return nil
}

func deleteOrder(c *apiClient, args []string) error {
	id, _, err := orderID(args, "delete <order-id>")
	if err != nil {
		return err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.do("DELETE", fmt.Sprintf("/orders/%d", id), nil, &out); err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", out.Message)
	return nil
}

func printOrder(out io.Writer, o *domain.Order) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", o.ID)
	fmt.Fprintf(w, "PROJECT\t%d\n", o.ProjectID)
	fmt.Fprintf(w, "TITLE\t%s\n", o.Title)
	fmt.Fprintf(w, "DESCRIPTION\t%s\n", deref(o.Description))
	fmt.Fprintf(w, "URL\t%s\n", deref(o.ProductURL))
	fmt.Fprintf(w, "QUANTITY\t%d\n", o.Quantity)
	fmt.Fprintf(w, "INVOICE\t%s\n", deref(o.InvoiceNumber))
	fmt.Fprintf(w, "PAYMENT\t%s\n", o.PaymentStatus)
	fmt.Fprintf(w, "DELIVERY\t%s\n", o.DeliveryStatus)
	fmt.Fprintf(w, "CREATED\t%s\n", o.CreatedAt.Format(time.DateTime))
	_ = w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// Admin commands
func listUsers(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("admin users", flag.ExitOnError)
	status := fs.String("status", "", "filter by status (pending|approved|rejected)")
	_ = fs.Parse(args)

	path := "/admin/users"
	if *status != "" {
		path += "?status=" + url.QueryEscape(*status)
	}

	var users []domain.User
	if err := c.do("GET", path, nil, &users); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tSTATUS\tROLE\tREGISTERED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Status, u.Role, u.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func setUserStatus(c *apiClient, args []string, status domain.UserStatus) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ordertrack admin %s <user-id>", map[domain.UserStatus]string{
			domain.UserStatusApproved: "approve",
			domain.UserStatusRejected: "reject",
		}[status])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user ID: %s", args[0])
	}

	var user domain.User
	if err := c.do("PATCH", fmt.Sprintf("/admin/users/%d/status", id), map[string]string{"status": string(status)}, &user); err != nil {
		return err
	}
	fmt.Printf("✓ %s is now %s\n", user.Email, user.Status)
	return nil
}

// bootstrapAdmin promotes an existing account straight in the database.
// It is the only way to create the first administrator.
func bootstrapAdmin(args []string) error {
	fs := flag.NewFlagSet("admin bootstrap", flag.ExitOnError)
	email := fs.String("email", "", "email of a registered account (required)")
	dsn := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	_ = fs.Parse(args)

	if *email == "" || *dsn == "" {
		fs.PrintDefaults()
		return fmt.Errorf("email and database URL are required")
	}

	log := logger.New(os.Stderr, "warn")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{URL: *dsn, MaxOpenConns: 1}, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	approvals := service.NewApprovalService(repository.NewPostgresUserRepository(pool.GetDB(), log), nil, nil, log)
	user, err := approvals.Promote(ctx, *email)
	if err != nil {
		return err
	}
	log.Info("admin bootstrapped", slog.Int64("user_id", user.ID))
	fmt.Printf("✓ %s is now an approved admin\n", user.Email)
	return nil
}

func printUsage() {
	fmt.Print(`OrderTrack CLI

Usage:
  ordertrack <command> [options]

Commands:
  auth      Account session (register, login, logout, me)
  projects  Project operations (list, create)
  orders    Order operations (list, create, get, update, delete)
  admin     Approval queue (users, approve, reject) and bootstrap
  help      Show this help message

Environment Variables:
  ORDERTRACK_API   API endpoint (default: http://localhost:8080/api)
  DATABASE_URL     Used by "admin bootstrap"

Examples:
  ordertrack auth register -email user@example.com -password secret1
  ordertrack admin bootstrap -email root@example.com
  ordertrack admin approve 2
  ordertrack projects create -name P1
  ordertrack orders create -project 1 -title Widget
  ordertrack orders update 1 -payment paid
`)
}
