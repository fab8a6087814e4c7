// shopfront is a terminal storefront over the e-commerce backend. All state
// lives in the holders under internal/; this binary only renders and routes
// commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/admin"
	"github.com/rafaelmeneses/shopfront/internal/cart"
	"github.com/rafaelmeneses/shopfront/internal/catalog"
	"github.com/rafaelmeneses/shopfront/internal/config"
	"github.com/rafaelmeneses/shopfront/internal/favorites"
	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
	"github.com/rafaelmeneses/shopfront/internal/orders"
	"github.com/rafaelmeneses/shopfront/internal/session"
	"github.com/rafaelmeneses/shopfront/internal/tokenstore"
)

type app struct {
	session   *session.Session
	cart      *cart.Holder
	listing   *catalog.Listing
	products  *catalog.Service
	favorites *favorites.Holder
	orders    *orders.Service
	admin     *admin.Service
	location  *catalog.MemoryLocation
}

func main() {
	_ = godotenv.Load()

	configDir := flag.String("config", "", "directory containing shopfront.yaml")
	asAdmin := flag.Bool("admin", false, "use the back-office (admin) session")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var store tokenstore.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx := context.Background()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("could not connect to Redis: %v", err)
		}
		defer rdb.Close()
		store = tokenstore.NewRedisStore(rdb, ctx)
	} else {
		store = tokenstore.NewFileStore(cfg.TokenFile)
	}

	role := tokenstore.RoleCustomer
	if *asAdmin {
		role = tokenstore.RoleAdmin
	}

	api := httpapi.New(cfg.BaseURL, store,
		httpapi.WithRole(role),
		httpapi.WithTimeout(cfg.RequestTimeout),
		httpapi.WithRateLimit(cfg.RequestsPerSec),
		httpapi.WithLogger(logger),
	)

	a := &app{
		session:   session.New(api, store, logger),
		favorites: favorites.NewHolder(api, logger),
		products:  catalog.NewService(api),
		orders:    orders.NewService(api),
		admin:     admin.NewService(api),
		location:  catalog.NewMemoryLocation(),
	}
	a.cart = cart.NewHolder(api, a.session, logger)
	a.listing = catalog.NewListing(a.products, a.location, cfg.PageSize, logger)

	// The 401 analogue of a redirect to the login screen.
	api.SetUnauthorizedHook(func() {
		a.session.ForceLogout()
		fmt.Println("session expired, please log in again")
	})

	a.favorites.Subscribe(func(count int) {
		logger.WithField("count", count).Debug("favorites changed")
	})

	ctx := context.Background()
	a.session.CheckSession(ctx)
	if a.session.IsAuthenticated() {
		fmt.Printf("welcome back, %s\n", a.session.User().DisplayName())
		if err := a.cart.Load(ctx); err == nil {
			fmt.Printf("cart: %s\n", a.cart.Summary())
		}
	}

	a.repl(ctx)
}

func (a *app) repl(ctx context.Context) {
	fmt.Println(`type "help" for commands`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "login":
			a.cmdLogin(ctx, args)
		case "signup":
			a.cmdSignup(ctx, args)
		case "logout":
			a.session.Logout()
			a.favorites.Reset()
			fmt.Println("logged out")
		case "whoami":
			if u := a.session.User(); u != nil {
				fmt.Printf("%s <%s> (%s)\n", u.DisplayName(), u.Email, u.Role)
			} else {
				fmt.Println("anonymous")
			}
		case "search":
			a.listing.SetSearchInput(strings.Join(args, " "))
			a.runListing(ctx, a.listing.SubmitSearch)
		case "category":
			cat := strings.Join(args, " ")
			a.runListing(ctx, func(ctx context.Context) error {
				return a.listing.SubmitCategory(ctx, cat)
			})
		case "page":
			if len(args) != 1 {
				fmt.Println("usage: page <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Println("usage: page <n>")
				continue
			}
			a.runListing(ctx, func(ctx context.Context) error {
				return a.listing.SetPage(ctx, n)
			})
		case "sort":
			if len(args) != 2 {
				fmt.Println("usage: sort <name|price|rating> <asc|desc>")
				continue
			}
			a.runListing(ctx, func(ctx context.Context) error {
				return a.listing.SubmitSort(ctx, args[0], args[1])
			})
		case "clear":
			a.runListing(ctx, a.listing.ClearFilters)
		case "show":
			a.cmdShow(ctx, args)
		case "categories":
			a.cmdCategories(ctx)
		case "featured":
			a.cmdFeatured(ctx)
		case "cart":
			a.cmdCart(ctx, args)
		case "fav":
			a.cmdFav(ctx, args)
		case "checkout":
			a.cmdCheckout(ctx, args)
		case "orders":
			a.cmdOrders(ctx, args)
		case "admin":
			a.cmdAdmin(ctx, args)
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  login <email> <password>      signup <email> <password> <first> <last>
  logout                        whoami
  search <text>                 category <name>
  page <n>                      sort <field> <order>
  clear                         show <product-id>
  categories                    featured
  cart [add|rm|set|clear] ...   fav [list|add|rm] ...
  checkout <first> <last> <address> <city> <state> <zip> <phone>
  orders [<id>|track <id>]      admin [stats|products|orders|status]
  quit`)
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	if err := a.session.Login(ctx, args[0], args[1]); err != nil {
		fmt.Println(a.session.Err())
		return
	}
	fmt.Printf("logged in as %s\n", a.session.User().DisplayName())
	_ = a.cart.Load(ctx)
	_ = a.favorites.LoadIDs(ctx)
}

func (a *app) cmdSignup(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: signup <email> <password> [first] [last]")
		return
	}
	fields := session.SignupFields{Email: args[0], Password: args[1]}
	if len(args) > 2 {
		fields.FirstName = args[2]
	}
	if len(args) > 3 {
		fields.LastName = args[3]
	}
	if err := a.session.Signup(ctx, fields); err != nil {
		fmt.Println(a.session.Err())
		return
	}
	fmt.Printf("welcome, %s\n", a.session.User().DisplayName())
}

func (a *app) runListing(ctx context.Context, op func(context.Context) error) {
	if err := op(ctx); err != nil {
		fmt.Println(a.listing.Err())
		return
	}
	a.renderListing()
}

func (a *app) renderListing() {
	f := a.listing.Filter()
	products := a.listing.Products()
	fmt.Printf("%d products (page %d/%d)  ?%s\n",
		a.listing.Total(), f.Page, a.listing.TotalPages(), f.Signature())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range products {
		fav := " "
		if a.favorites.IsFavorited(p.ID) {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s %s\t$%.2f\t%s\n", p.ID, fav, p.Name, p.Price, p.Category)
	}
	w.Flush()
}

func (a *app) cmdShow(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: show <product-id>")
		return
	}
	p, err := a.products.Get(ctx, args[0])
	if err != nil {
		fmt.Println(httpapi.Detail(err, "failed to load product"))
		return
	}
	fmt.Printf("%s  $%.2f (%s)\n%s\nstock: %d", p.Name, p.Price, p.Category, p.Description, p.Stock)
	if p.Rating != nil {
		fmt.Printf("  rating: %.1f", *p.Rating)
	}
	fmt.Println()
	if a.session.IsAuthenticated() && a.favorites.Check(ctx, p.ID) {
		fmt.Println("in your favorites")
	}
}

func (a *app) cmdCategories(ctx context.Context) {
	cats, err := a.products.Categories(ctx)
	if err != nil {
		fmt.Println(httpapi.Detail(err, "failed to load categories"))
		return
	}
	for _, c := range cats {
		fmt.Printf("  %s\n", c.Name)
	}
}

func (a *app) cmdFeatured(ctx context.Context) {
	products, err := a.products.Featured(ctx)
	if err != nil {
		fmt.Println(httpapi.Detail(err, "failed to load featured products"))
		return
	}
	for _, p := range products {
		fmt.Printf("  %s  %s  $%.2f\n", p.ID, p.Name, p.Price)
	}
}

func (a *app) cmdCart(ctx context.Context, args []string) {
	if len(args) == 0 {
		if err := a.cart.Load(ctx); err != nil {
			fmt.Println(a.cart.Err())
			return
		}
		for _, item := range a.cart.Items() {
			fmt.Printf("  %s  x%d  $%.2f\n", item.Name, item.Quantity, item.Subtotal)
		}
		pricing := a.cart.Pricing()
		fmt.Printf("subtotal $%.2f  tax $%.2f  shipping $%.2f  total $%.2f\n",
			pricing.Subtotal, pricing.Tax, pricing.Shipping, pricing.Total)
		return
	}

	usage := "usage: cart [add <id> [qty] | rm <id> | set <id> <qty> | clear]"
	var err error
	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Println(usage)
			return
		}
		qty := 1
		if len(args) > 2 {
			qty, _ = strconv.Atoi(args[2])
		}
		err = a.cart.Add(ctx, args[1], qty)
	case "rm":
		if len(args) < 2 {
			fmt.Println(usage)
			return
		}
		err = a.cart.Remove(ctx, args[1])
	case "set":
		if len(args) < 3 {
			fmt.Println(usage)
			return
		}
		qty, _ := strconv.Atoi(args[2])
		err = a.cart.UpdateQuantity(ctx, args[1], qty)
	case "clear":
		err = a.cart.Clear(ctx)
	default:
		fmt.Println(usage)
		return
	}
	if err != nil {
		fmt.Println(a.cart.Err())
		return
	}
	fmt.Println(a.cart.Summary())
}

func (a *app) cmdFav(ctx context.Context, args []string) {
	if len(args) == 0 || args[0] == "list" {
		products, err := a.favorites.List(ctx)
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load favorites"))
			return
		}
		for _, p := range products {
			fmt.Printf("  %s  %s  $%.2f\n", p.ID, p.Name, p.Price)
		}
		return
	}
	if len(args) != 2 {
		fmt.Println("usage: fav [list | add <id> | rm <id>]")
		return
	}
	var err error
	switch args[0] {
	case "add":
		err = a.favorites.Add(ctx, args[1])
	case "rm":
		err = a.favorites.Remove(ctx, args[1])
	default:
		fmt.Println("usage: fav [list | add <id> | rm <id>]")
		return
	}
	if err != nil {
		fmt.Println(httpapi.Detail(err, "favorites update failed"))
		return
	}
	fmt.Printf("%d favorites\n", a.favorites.Count())
}

func (a *app) cmdCheckout(ctx context.Context, args []string) {
	if len(args) < 7 {
		fmt.Println("usage: checkout <first> <last> <address> <city> <state> <zip> <phone>")
		return
	}
	addr := models.ShippingAddress{
		FirstName: args[0], LastName: args[1], Address: args[2],
		City: args[3], State: args[4], ZipCode: args[5],
		Country: "USA", Phone: args[6],
	}
	order, err := a.orders.Create(ctx, addr, "credit_card")
	if err != nil {
		fmt.Println(httpapi.Detail(err, err.Error()))
		return
	}
	_ = a.cart.Load(ctx)
	fmt.Printf("order %s placed, total $%.2f\n", order.ID, order.Total)
}

func (a *app) cmdOrders(ctx context.Context, args []string) {
	if len(args) == 0 {
		list, err := a.orders.List(ctx, 1, 10)
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load orders"))
			return
		}
		for _, o := range list.Orders {
			fmt.Printf("  %s  %s  $%.2f  %s\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Total, o.Status)
		}
		return
	}
	if args[0] == "track" && len(args) == 2 {
		tracking, err := a.orders.Tracking(ctx, args[1])
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load tracking"))
			return
		}
		for _, ev := range tracking.Events {
			fmt.Printf("  %s  %s\n", ev.Timestamp.Format("2006-01-02 15:04"), ev.Status)
		}
		return
	}
	order, err := a.orders.Get(ctx, args[0])
	if err != nil {
		fmt.Println(httpapi.Detail(err, "failed to load order"))
		return
	}
	fmt.Printf("order %s  %s  total $%.2f\n", order.ID, order.Status, order.Total)
	for _, item := range order.Items {
		fmt.Printf("  %s x%d  $%.2f\n", item.Name, item.Quantity, item.Subtotal)
	}
}

func (a *app) cmdAdmin(ctx context.Context, args []string) {
	if !a.session.IsAdmin() {
		fmt.Println("admin session required (run with -admin and log in as an admin)")
		return
	}
	if len(args) == 0 {
		args = []string{"stats"}
	}
	switch args[0] {
	case "stats":
		stats, err := a.admin.Stats(ctx)
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load stats"))
			return
		}
		fmt.Printf("products %d  orders %d  revenue $%.2f  pending %d  low-stock %d\n",
			stats.TotalProducts, stats.TotalOrders, stats.TotalRevenue,
			stats.PendingOrders, stats.LowStockProducts)
	case "products":
		products, err := a.admin.Products(ctx)
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load products"))
			return
		}
		for _, p := range products {
			fmt.Printf("  %s  %s  $%.2f  stock %d\n", p.ID, p.Name, p.Price, p.Stock)
		}
	case "orders":
		list, err := a.admin.Orders(ctx)
		if err != nil {
			fmt.Println(httpapi.Detail(err, "failed to load orders"))
			return
		}
		for _, o := range list {
			fmt.Printf("  %s  %s  $%.2f\n", o.ID, o.Status, o.Total)
		}
	case "status":
		if len(args) != 3 {
			fmt.Println("usage: admin status <order-id> <status>")
			return
		}
		if err := a.admin.UpdateOrderStatus(ctx, args[1], args[2]); err != nil {
			fmt.Println(httpapi.Detail(err, err.Error()))
			return
		}
		fmt.Println("status updated")
	default:
		fmt.Println("usage: admin [stats | products | orders | status <id> <status>]")
	}
}
