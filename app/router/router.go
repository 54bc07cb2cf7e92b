package router

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"echo-vintage-ecard/app/controller"
)

type Controllers struct {
	Envelope   *controller.EnvelopeController
	Sticker    *controller.StickerController
	PhotoFrame *controller.PhotoFrameController
	Stamp      *controller.StampController
	Music      *controller.MusicController
	User       *controller.UserController
	Card       *controller.CardController
	Draft      *controller.DraftController
	Promo      *controller.PromoController
	Legal      *controller.LegalController
}

// Options configures the routes that are not controller specific
type Options struct {
	// AdminToken guards /admin/ routes as a Bearer token. Empty disables the check.
	AdminToken string
	// UploadDir is served under /uploads/ when images are stored locally
	UploadDir string
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requireAdmin rejects requests without the admin Bearer token
func requireAdmin(token string, next http.Handler) http.Handler {
	if token == "" {
		log.Printf("⚠️  ADMIN_TOKEN is not set, admin routes are unprotected")
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.Printf("❌ Unauthorized admin request: %s %s", r.Method, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crudRoutes are the handlers every catalogue controller exposes
type crudRoutes interface {
	List(http.ResponseWriter, *http.Request)
	ListActive(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func registerCatalog(public, admin *http.ServeMux, kind string, c crudRoutes) {
	public.HandleFunc("GET /api/"+kind, c.ListActive)

	admin.HandleFunc("GET /admin/"+kind, c.List)
	admin.HandleFunc("POST /admin/"+kind, c.Create)
	admin.HandleFunc("GET /admin/"+kind+"/{id}", c.Get)
	admin.HandleFunc("PUT /admin/"+kind+"/{id}", c.Update)
	admin.HandleFunc("DELETE /admin/"+kind+"/{id}", c.Delete)
}

// SetupRoutes registers every route on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers, opts Options) {
	// Ping endpoint
	mux.HandleFunc("GET /ping", pingHandler)

	// Locally hosted images
	if opts.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	// Admin routes live on their own mux behind the token check
	admin := http.NewServeMux()

	registerCatalog(mux, admin, "envelopes", controllers.Envelope)
	registerCatalog(mux, admin, "stickers", controllers.Sticker)
	registerCatalog(mux, admin, "photo-frames", controllers.PhotoFrame)
	registerCatalog(mux, admin, "stamps", controllers.Stamp)
	registerCatalog(mux, admin, "music", controllers.Music)

	// Sticker uploads
	admin.HandleFunc("POST /admin/stickers/batch", controllers.Sticker.BatchUpload)
	admin.HandleFunc("POST /admin/uploads", controllers.Sticker.Upload)

	// Photo slot editor
	admin.HandleFunc("POST /admin/photo-frames/{id}/slots", controllers.PhotoFrame.AddSlot)
	admin.HandleFunc("DELETE /admin/photo-frames/{id}/slots/{slotId}", controllers.PhotoFrame.RemoveSlot)
	admin.HandleFunc("POST /admin/photo-frames/{id}/slots/{slotId}/{action}", controllers.PhotoFrame.SlotAction)

	// Users
	admin.HandleFunc("GET /admin/users", controllers.User.List)
	admin.HandleFunc("GET /admin/users/{id}", controllers.User.Get)
	admin.HandleFunc("PUT /admin/users/{id}/subscription", controllers.User.UpdateSubscription)
	admin.HandleFunc("PUT /admin/users/{id}/role", controllers.User.UpdateRole)
	admin.HandleFunc("POST /admin/users/{id}/points", controllers.User.AdjustPoints)
	admin.HandleFunc("DELETE /admin/users/{id}", controllers.User.Delete)

	// Promo codes and legal requests (admin side)
	admin.HandleFunc("GET /admin/promo-codes", controllers.Promo.List)
	admin.HandleFunc("POST /admin/promo-codes", controllers.Promo.Create)
	admin.HandleFunc("GET /admin/legal-requests", controllers.Legal.List)

	mux.Handle("/admin/", requireAdmin(opts.AdminToken, admin))

	// Card wizard drafts
	mux.HandleFunc("PUT /api/drafts/{userId}", controllers.Draft.Save)
	mux.HandleFunc("GET /api/drafts/{userId}", controllers.Draft.Get)
	mux.HandleFunc("DELETE /api/drafts/{userId}", controllers.Draft.Delete)

	// Cards
	mux.HandleFunc("POST /api/cards", controllers.Card.Create)
	mux.HandleFunc("POST /api/cards/quote", controllers.Card.Quote)
	mux.HandleFunc("GET /api/cards/{slug}", controllers.Card.Open)
	mux.HandleFunc("GET /api/cards/{slug}/qr", controllers.Card.QRCode)
	mux.HandleFunc("GET /api/cards/{slug}/render", controllers.Card.Render)
	mux.HandleFunc("GET /api/cards/{slug}/preview.png", controllers.Card.PreviewPNG)
	mux.HandleFunc("GET /api/cards/{slug}/preview.pdf", controllers.Card.PreviewPDF)
	mux.HandleFunc("POST /api/cards/{slug}/resend", controllers.Card.Resend)
	mux.HandleFunc("GET /api/users/{userId}/cards", controllers.Card.ListSent)

	// Promo codes and legal requests (public side)
	mux.HandleFunc("POST /api/promo-codes/redeem", controllers.Promo.Redeem)
	mux.HandleFunc("POST /api/legal-requests", controllers.Legal.Submit)
}
