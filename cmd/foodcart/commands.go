package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fjod/takes-and-tastes/internal/auth"
	"github.com/fjod/takes-and-tastes/internal/cart"
	"github.com/fjod/takes-and-tastes/internal/checkout"
	"github.com/fjod/takes-and-tastes/internal/client"
	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/urfave/cli/v2"
)

var (
	errItemUnavailable = errors.New("item is not available right now")
	errMenuItemMissing = errors.New("item is not on this restaurant's menu")
)

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

func argAt(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing argument <%s>", name)
	}
	return v, nil
}

func (rt *runtime) table() *tabwriter.Writer {
	return tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
}

func (rt *runtime) listRestaurants(c *cli.Context) error {
	restaurants, err := rt.api.ListRestaurants(c.Context, client.RestaurantFilter{
		Category: c.String("category"),
		Search:   c.String("search"),
		Popular:  c.Bool("popular"),
	})
	if err != nil {
		return err
	}
	if len(restaurants) == 0 {
		rt.printf("No restaurants found\n")
		return nil
	}

	tw := rt.table()
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRATING\tDELIVERY\tFEE\tOPEN")
	for _, r := range restaurants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\t%s\t%t\n",
			r.ID, r.Name, r.Category, r.Rating, r.DeliveryTime, money(r.DeliveryFee), r.IsOpen)
	}
	return tw.Flush()
}

func (rt *runtime) listCategories(c *cli.Context) error {
	categories, err := rt.api.Categories(c.Context)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		if cat.Icon != nil {
			rt.printf("%s %s\n", *cat.Icon, cat.Name)
			continue
		}
		rt.printf("%s\n", cat.Name)
	}
	return nil
}

func (rt *runtime) showMenu(c *cli.Context) error {
	id, err := argAt(c, 0, "restaurant-id")
	if err != nil {
		return err
	}
	items, err := rt.api.GetMenu(c.Context, id, c.String("category"))
	if err != nil {
		return err
	}

	tw := rt.table()
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tAVAILABLE")
	for _, item := range items {
		name := item.Name
		if item.IsVegetarian {
			name += " (veg)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", item.ID, name, item.Category, money(item.Price), item.IsAvailable)
	}
	return tw.Flush()
}

func (rt *runtime) showCart(*cli.Context) error {
	state := rt.store.Snapshot()
	if state.IsEmpty() {
		rt.printf("Your cart is empty\n")
		return nil
	}

	rt.printf("%s (%s)\n", state.Restaurant.Name, state.Restaurant.DeliveryTime)
	tw := rt.table()
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tPRICE\tLINE")
	for _, line := range state.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", line.ItemID, line.Name, line.Quantity,
			money(line.UnitPrice), money(line.UnitPrice*float64(line.Quantity)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals := rt.store.Totals()
	rt.printf("Items:        %d\n", rt.store.ItemCount())
	rt.printf("Subtotal:     %s\n", money(totals.Subtotal))
	rt.printf("Delivery fee: %s\n", money(totals.DeliveryFee))
	if totals.Discount > 0 {
		rt.printf("Discount:     -%s\n", money(totals.Discount))
	}
	rt.printf("Total:        %s\n", money(totals.Total))
	return nil
}

func (rt *runtime) addToCart(c *cli.Context) error {
	restaurantID, err := argAt(c, 0, "restaurant-id")
	if err != nil {
		return err
	}
	itemID, err := argAt(c, 1, "item-id")
	if err != nil {
		return err
	}

	detail, err := rt.api.GetRestaurant(c.Context, restaurantID)
	if err != nil {
		return err
	}
	var item *domain.MenuItem
	for i := range detail.MenuItems {
		if detail.MenuItems[i].ID == itemID {
			item = &detail.MenuItems[i]
			break
		}
	}
	if item == nil {
		return errMenuItemMissing
	}
	if !item.IsAvailable {
		return errItemUnavailable
	}

	add := rt.store.AddItem
	if c.Bool("replace") {
		add = rt.store.AddItemReplacing
	}
	res, err := add(*item, detail.Ref(), c.Int("qty"))
	if errors.Is(err, cart.ErrConflictingRestaurant) {
		return fmt.Errorf("%w\nrun 'foodcart cart clear' or add again with --replace", err)
	}
	if err != nil {
		return err
	}
	if res.Cleared {
		rt.printf("Cart from another restaurant was cleared\n")
	}
	rt.printf("Added %s to cart (%d items, %s)\n", item.Name, rt.store.ItemCount(), money(rt.store.Totals().Total))
	return nil
}

func (rt *runtime) updateCart(c *cli.Context) error {
	itemID, err := argAt(c, 0, "item-id")
	if err != nil {
		return err
	}
	raw, err := argAt(c, 1, "quantity")
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid quantity %q", raw)
	}
	if err := rt.store.UpdateQuantity(itemID, qty); err != nil {
		return err
	}
	return rt.showCart(c)
}

func (rt *runtime) removeFromCart(c *cli.Context) error {
	itemID, err := argAt(c, 0, "item-id")
	if err != nil {
		return err
	}
	rt.store.RemoveItem(itemID)
	return rt.showCart(c)
}

func (rt *runtime) clearCart(*cli.Context) error {
	rt.store.ClearCart()
	rt.printf("Cart cleared\n")
	return nil
}

func (rt *runtime) checkout(c *cli.Context) error {
	if _, ok := rt.session.User(); !ok {
		return auth.ErrNotLoggedIn
	}

	payment := domain.PaymentMethod(strings.ToLower(c.String("payment")))
	if payment != "" && !payment.IsValid() {
		return fmt.Errorf("unknown payment method %q", payment)
	}

	conf, err := rt.workflow.Submit(c.Context, checkout.Details{
		Address: domain.DeliveryAddress{
			Street:     c.String("street"),
			City:       c.String("city"),
			PostalCode: c.String("postal-code"),
			Country:    c.String("country"),
		},
		PaymentMethod: payment,
		Notes:         c.String("notes"),
	})
	var submitErr *checkout.SubmitError
	if errors.As(err, &submitErr) {
		if errors.Is(err, checkout.ErrNetworkFailure) {
			return fmt.Errorf("%s. Your cart was kept, try again", submitErr.Message)
		}
		return errors.New(submitErr.Message)
	}
	if err != nil {
		return err
	}

	rt.printf("Order placed successfully!\n")
	rt.printf("Order ID: %s\n", conf.OrderID)
	if conf.Order != nil {
		rt.printf("Total:    %s\n", money(conf.Order.TotalAmount))
		if conf.Order.EstimatedDeliveryTime != "" {
			rt.printf("Arriving: %s\n", conf.Order.EstimatedDeliveryTime)
		}
	}
	return nil
}

func (rt *runtime) listOrders(c *cli.Context) error {
	orders, err := rt.api.ListOrders(c.Context)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		rt.printf("No orders yet\n")
		return nil
	}

	tw := rt.table()
	fmt.Fprintln(tw, "ID\tRESTAURANT\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		name := o.RestaurantName
		if name == "" {
			name = o.RestaurantID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, name, o.Status, money(o.TotalAmount),
			o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (rt *runtime) getOrder(c *cli.Context) error {
	id, err := argAt(c, 0, "order-id")
	if err != nil {
		return err
	}
	o, err := rt.api.GetOrder(c.Context, id)
	if err != nil {
		return err
	}

	rt.printf("Order %s: %s\n", o.ID, o.Status)
	if o.RestaurantName != "" {
		rt.printf("Restaurant: %s\n", o.RestaurantName)
	}
	tw := rt.table()
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%dx\t%s\t%s\n", item.Quantity, item.Name, money(item.Price*float64(item.Quantity)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	rt.printf("Subtotal:     %s\n", money(o.Subtotal))
	rt.printf("Delivery fee: %s\n", money(o.DeliveryFee))
	rt.printf("Total:        %s\n", money(o.TotalAmount))
	rt.printf("Deliver to:   %s, %s\n", o.DeliveryAddress.Street, o.DeliveryAddress.City)
	rt.printf("Payment:      %s\n", o.PaymentMethod)
	return nil
}

func (rt *runtime) login(c *cli.Context) error {
	user, err := rt.session.Login(c.Context, rt.api, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	rt.printf("Welcome back, %s\n", user.Name)
	return nil
}

func (rt *runtime) register(c *cli.Context) error {
	user, err := rt.session.Register(c.Context, rt.api, client.Registration{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
		Phone:    c.String("phone"),
	})
	if err != nil {
		return err
	}
	rt.printf("Account created for %s\n", user.Email)
	return nil
}

// logout drops the local session only; the cart stays on the device.
func (rt *runtime) logout(c *cli.Context) error {
	if err := rt.session.Logout(c.Context); err != nil {
		return err
	}
	rt.printf("Logged out\n")
	return nil
}

func (rt *runtime) profile(c *cli.Context) error {
	if _, ok := rt.session.User(); !ok {
		return auth.ErrNotLoggedIn
	}

	var (
		user *domain.User
		err  error
	)
	if c.IsSet("name") || c.IsSet("phone") {
		user, err = rt.session.UpdateProfile(c.Context, rt.api, client.ProfileUpdate{
			Name:  c.String("name"),
			Phone: c.String("phone"),
		})
	} else {
		user, err = rt.api.Profile(c.Context)
	}
	if err != nil {
		return err
	}

	rt.printf("Name:  %s\n", user.Name)
	rt.printf("Email: %s\n", user.Email)
	if user.Phone != "" {
		rt.printf("Phone: %s\n", user.Phone)
	}
	return nil
}
