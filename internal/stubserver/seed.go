package stubserver

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// seed loads the development catalog and the two well-known accounts:
// admin@ecommerce.com / admin123 and test@example.com / password.
func (s *Server) seed() {
	s.products = []models.Product{
		{
			ID: "1", Name: "Wireless Bluetooth Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Price:       99.99, Currency: "USD", Category: "Electronics",
			ImageURL: "https://images.example.com/headphones.jpg",
			Stock:    50, Rating: floatPtr(4.5), ReviewCount: intPtr(128),
		},
		{
			ID: "2", Name: "Smart Fitness Watch",
			Description: "Track your fitness goals with this advanced smartwatch",
			Price:       199.99, Currency: "USD", Category: "Electronics",
			ImageURL: "https://images.example.com/watch.jpg",
			Stock:    25, Rating: floatPtr(4.3), ReviewCount: intPtr(89),
		},
		{
			ID: "3", Name: "Organic Cotton T-Shirt",
			Description: "Comfortable and eco-friendly cotton t-shirt",
			Price:       29.99, Currency: "USD", Category: "Clothing",
			ImageURL: "https://images.example.com/tshirt.jpg",
			Stock:    100, Rating: floatPtr(4.7), ReviewCount: intPtr(256),
		},
		{
			ID: "4", Name: "Stainless Steel Water Bottle",
			Description: "Keep your drinks cold for hours with this insulated bottle",
			Price:       24.99, Currency: "USD", Category: "Home & Garden",
			ImageURL: "https://images.example.com/bottle.jpg",
			Stock:    75, Rating: floatPtr(4.6), ReviewCount: intPtr(189),
		},
		{
			ID: "5", Name: "Professional Camera Lens",
			Description: "High-quality camera lens for professional photography",
			Price:       599.99, Currency: "USD", Category: "Electronics",
			ImageURL: "https://images.example.com/lens.jpg",
			Stock:    15, Rating: floatPtr(4.8), ReviewCount: intPtr(67),
		},
	}
	s.nextID = len(s.products) + 1

	s.cats = []models.Category{
		{ID: "1", Name: "Electronics", Description: "Electronic devices and accessories"},
		{ID: "2", Name: "Clothing", Description: "Fashion and apparel"},
		{ID: "3", Name: "Home & Garden", Description: "Home improvement and gardening"},
		{ID: "4", Name: "Sports", Description: "Sports equipment and activewear"},
		{ID: "5", Name: "Books", Description: "Books and educational materials"},
	}

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	customerHash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	s.users = map[string]*user{
		"admin@ecommerce.com": {
			User: models.User{
				ID: "admin_1", Email: "admin@ecommerce.com",
				FirstName: "Admin", LastName: "User", Role: models.RoleAdmin,
			},
			passwordHash: adminHash,
		},
		"test@example.com": {
			User: models.User{
				ID: "user_1", Email: "test@example.com",
				FirstName: "Test", LastName: "User", Role: models.RoleCustomer,
			},
			passwordHash: customerHash,
		},
	}
}
