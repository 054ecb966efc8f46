package httpgin

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/playpass/internal/auth"
	"github.com/kirinyoku/playpass/internal/booking"
	"github.com/kirinyoku/playpass/internal/domain"
	"github.com/kirinyoku/playpass/internal/location"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
	"github.com/kirinyoku/playpass/internal/service"
	"github.com/kirinyoku/playpass/internal/service/listings"
	"github.com/kirinyoku/playpass/internal/service/partners"
	"github.com/kirinyoku/playpass/internal/service/reviews"
	"github.com/kirinyoku/playpass/internal/service/selections"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Deps struct {
	Services       *service.Services
	Idem           *redisrepo.IdempotencyStore
	Verifier       *auth.Verifier
	Locator        location.Service
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(d Deps, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggingMiddleware(d.Logger),
		CORS(d.AllowedOrigins),
		AuthMiddleware(d.Verifier),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	svcs := d.Services
	authed := RequireAuth()

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Catalogue
	r.GET("/listings", handleNearbyListings(svcs, d.Locator))
	r.GET("/listings/:id", handleGetListing(svcs))
	r.GET("/listings/:id/plans", handleListPlans(svcs))
	r.GET("/listings/:id/sessions", handleListSessions(svcs))
	r.GET("/listings/:id/booking", handleBookingView(svcs))

	// Booking selection
	r.POST("/listings/:id/selections", handleStartSelection(svcs))
	r.GET("/selections/:sid", handleGetSelection(svcs))
	r.PUT("/selections/:sid/plan", handleSelectPlan(svcs))
	r.POST("/selections/:sid/sessions/:sessionId/toggle", handleToggleSession(svcs))
	r.POST("/selections/:sid/confirm", handleConfirmSelection(svcs))

	// Reviews
	r.GET("/listings/:id/reviews", handleListReviews(svcs))
	r.POST("/listings/:id/reviews", authed, handleCreateReview(svcs, d.Idem))

	// Partners
	r.POST("/partners", authed, handleOnboardPartner(svcs, d.Idem))
	r.GET("/partners/:id", handleGetPartner(svcs))
	r.PATCH("/partners/:id", authed, handleUpdatePartner(svcs))
	r.POST("/partners/:id/listings", authed, handleCreateListing(svcs))
	r.POST("/listings/:id/plans", authed, handleAddPlans(svcs))
	r.POST("/listings/:id/sessions", authed, handleAddSessions(svcs))

	return r
}

// --- Catalogue ---

// @Summary  Search listings near a point
// @Param    lat        query  number  false  "Latitude; defaults to the caller's location"
// @Param    lng        query  number  false  "Longitude"
// @Param    radius_km  query  number  false  "Search radius (default 10, max 100)"
// @Param    limit      query  int     false  "Max results (default 20, max 100)"
// @Param    X-User-Location header string false "lat,lng reported by the device"
// @Success  200  {array}   domain.ListingWithDistance
// @Failure  400  {object}  ErrorResponse
// @Router   /listings [get]
func handleNearbyListings(svcs *service.Services, locator location.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var center domain.GeoPoint

		lat, lng := c.Query("lat"), c.Query("lng")
		switch {
		case lat != "" && lng != "":
			p, err := location.ParsePoint(lat + "," + lng)
			if err != nil {
				badRequest(c, "invalid lat/lng")
				return
			}
			center = p
		case lat != "" || lng != "":
			badRequest(c, "lat and lng must be given together")
			return
		case locator != nil:
			center = locator.Resolve(c.Request)
		}

		radius, err := parseFloatDefault(c.Query("radius_km"), 0)
		if err != nil {
			badRequest(c, "invalid radius_km")
			return
		}

		out, err := svcs.Listings.Nearby(
			c.Request.Context(),
			center,
			radius,
			parseIntDefault(c.Query("limit"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, out, "private, max-age=30", true)
	}
}

// @Summary  Get listing
// @Param    id  path  int  true  "Listing ID"
// @Success  200  {object}  domain.Listing
// @Failure  404  {object}  ErrorResponse
// @Router   /listings/{id} [get]
func handleGetListing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		l, err := svcs.Listings.Listing(c.Request.Context(), listingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, l, "public, max-age=60", true)
	}
}

// @Summary  List plans of a listing
// @Param    id  path  int  true  "Listing ID"
// @Success  200  {array}   domain.Plan
// @Failure  404  {object}  ErrorResponse
// @Router   /listings/{id}/plans [get]
func handleListPlans(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		plans, err := svcs.Listings.Plans(c.Request.Context(), listingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, plans, "public, max-age=60", true)
	}
}

// @Summary  List candidate sessions of a listing
// @Param    id         path   int     true   "Listing ID"
// @Param    from_date  query  string  false  "YYYY-MM-DD, inclusive"
// @Param    to_date    query  string  false  "YYYY-MM-DD, exclusive"
// @Success  200  {array}   domain.Session
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /listings/{id}/sessions [get]
func handleListSessions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		sessions, err := svcs.Listings.Sessions(
			c.Request.Context(),
			listingID,
			c.Query("from_date"),
			c.Query("to_date"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, sessions, "public, max-age=15", true)
	}
}

// @Summary  Booking screen for a listing
// @Description Listing, plans, bookable dates and the slots of the chosen date. Plans or sessions that failed to load are reported in status.
// @Param    id    path   int     true   "Listing ID"
// @Param    date  query  string  false  "YYYY-MM-DD"
// @Success  200  {object}  listings.BookingView
// @Failure  404  {object}  ErrorResponse
// @Failure  502  {object}  ErrorResponse
// @Router   /listings/{id}/booking [get]
func handleBookingView(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		v, err := svcs.Listings.BookingView(c.Request.Context(), listingID, c.Query("date"))
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, v, "private, max-age=15", true)
	}
}

// --- Booking selection ---

// @Summary  Start a booking selection
// @Param    id  path  int  true  "Listing ID"
// @Success  201  {object}  SelectionResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /listings/{id}/selections [post]
func handleStartSelection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		id, sel, err := svcs.Selections.Start(c.Request.Context(), listingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, renderSelection(id, sel, newRequestActor(c)))
	}
}

// @Summary  Get a booking selection
// @Param    sid  path  string  true  "Selection ID"
// @Success  200  {object}  SelectionResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /selections/{sid} [get]
func handleGetSelection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sid")

		sel, err := svcs.Selections.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, renderSelection(id, sel, newRequestActor(c)))
	}
}

// @Summary  Select a plan
// @Description Switches to the plan and clears picked sessions, also when the plan was already selected.
// @Param    sid  path  string             true  "Selection ID"
// @Param    req  body  SelectPlanRequest  true  "payload"
// @Success  200  {object}  SelectionResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /selections/{sid}/plan [put]
func handleSelectPlan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sid")

		var req SelectPlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		a := newRequestActor(c)
		sel, err := svcs.Selections.SelectPlan(c.Request.Context(), id, req.PlanID, a.actor())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, renderSelection(id, sel, a))
	}
}

// @Summary  Toggle a session
// @Description Removes the session if picked, otherwise adds it. Adding beyond the plan's session count leaves the selection unchanged and returns an error notice.
// @Param    sid        path  string  true  "Selection ID"
// @Param    sessionId  path  int     true  "Session ID"
// @Success  200  {object}  SelectionResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /selections/{sid}/sessions/{sessionId}/toggle [post]
func handleToggleSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sid")

		sessionID, ok := parseInt64Param(c, "sessionId")
		if !ok {
			return
		}

		a := newRequestActor(c)
		sel, err := svcs.Selections.ToggleSession(c.Request.Context(), id, sessionID, a.actor())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, renderSelection(id, sel, a))
	}
}

// @Summary  Confirm a selection
// @Description On success the selection is discarded and checkout_url names the checkout route.
// @Param    sid  path  string  true  "Selection ID"
// @Success  200  {object}  SelectionResponse
// @Failure  401  {object}  SelectionResponse "login required"
// @Failure  409  {object}  SelectionResponse "sessions no longer available"
// @Failure  422  {object}  SelectionResponse "selection incomplete"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /selections/{sid}/confirm [post]
func handleConfirmSelection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sid")

		a := newRequestActor(c)
		sel, err := svcs.Selections.Confirm(c.Request.Context(), id, a.actor())

		var status int
		switch {
		case err == nil:
			status = http.StatusOK
		case errors.Is(err, booking.ErrLoginRequired):
			status = http.StatusUnauthorized
		case errors.Is(err, booking.ErrSelectionIncomplete), errors.Is(err, booking.ErrNoPlanSelected):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, selections.ErrSessionsUnavailable):
			status = http.StatusConflict
		default:
			respondErr(c, err)
			return
		}

		c.JSON(status, renderSelection(id, sel, a))
	}
}

// --- Reviews ---

// @Summary  List reviews of a listing
// @Param    id      path   int  true   "Listing ID"
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {array}   domain.Review
// @Failure  404  {object}  ErrorResponse
// @Router   /listings/{id}/reviews [get]
func handleListReviews(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		out, err := svcs.Reviews.List(
			c.Request.Context(),
			listingID,
			parseIntDefault(c.Query("limit"), reviews.DefaultLimit),
			parseIntDefault(c.Query("offset"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30", true)
	}
}

// @Summary  Review a listing (idempotent)
// @Security BearerAuth
// @Param    id   path  int                  true  "Listing ID"
// @Param    req  body  CreateReviewRequest  true  "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201  {object}  domain.Review
// @Failure  400  {object}  ErrorResponse
// @Failure  401  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "already reviewed / idem in progress"
// @Router   /listings/{id}/reviews [post]
func handleCreateReview(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		v := viewer(c)
		respondIdempotent(c, idem, "review:"+strconv.FormatInt(listingID, 10), v.UserID, http.StatusCreated, func() (any, error) {
			return svcs.Reviews.Create(c.Request.Context(), v.UserID, listingID, req.Rating, req.Comment)
		})
	}
}

// --- Partners ---

// @Summary  Onboard as a partner (idempotent)
// @Security BearerAuth
// @Param    req  body  OnboardPartnerRequest  true  "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201  {object}  domain.Partner
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "already a partner / idem in progress"
// @Router   /partners [post]
func handleOnboardPartner(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OnboardPartnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		v := viewer(c)
		respondIdempotent(c, idem, "partner", v.UserID, http.StatusCreated, func() (any, error) {
			return svcs.Partners.Onboard(c.Request.Context(), v.UserID, domain.Partner{
				Name:  req.Name,
				Kind:  req.Kind,
				Bio:   req.Bio,
				Phone: req.Phone,
				Email: req.Email,
				City:  req.City,
			})
		})
	}
}

// @Summary  Get partner profile
// @Param    id  path  int  true  "Partner ID"
// @Success  200  {object}  domain.Partner
// @Failure  404  {object}  ErrorResponse
// @Router   /partners/{id} [get]
func handleGetPartner(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		p, err := svcs.Partners.Get(c.Request.Context(), partnerID)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, p, "public, max-age=60", true)
	}
}

// @Summary  Update own partner profile
// @Security BearerAuth
// @Param    id   path  int                   true  "Partner ID"
// @Param    req  body  UpdatePartnerRequest  true  "fields to change"
// @Success  200  {object}  domain.Partner
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /partners/{id} [patch]
func handleUpdatePartner(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req UpdatePartnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := svcs.Partners.UpdateProfile(c.Request.Context(), viewer(c).UserID, partnerID, domain.PartnerProfilePatch{
			Name:  req.Name,
			Bio:   req.Bio,
			Phone: req.Phone,
			Email: req.Email,
			City:  req.City,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Create a listing with its plans
// @Security BearerAuth
// @Param    id   path  int                   true  "Partner ID"
// @Param    req  body  CreateListingRequest  true  "payload"
// @Success  201  {object}  CreateListingResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Router   /partners/{id}/listings [post]
func handleCreateListing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CreateListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		l, plans := req.toDomain(partnerID)
		created, createdPlans, err := svcs.Partners.CreateListing(c.Request.Context(), viewer(c).UserID, partnerID, l, plans)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateListingResponse{Listing: created, Plans: createdPlans})
	}
}

// @Summary  Add plans to a listing
// @Security BearerAuth
// @Param    id   path  int              true  "Listing ID"
// @Param    req  body  AddPlansRequest  true  "payload"
// @Success  201  {array}   domain.Plan
// @Failure  403  {object}  ErrorResponse
// @Router   /listings/{id}/plans [post]
func handleAddPlans(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req AddPlansRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		plans, err := svcs.Partners.AddPlans(c.Request.Context(), viewer(c).UserID, listingID, plansFromInput(req.Plans))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, plans)
	}
}

// @Summary  Schedule sessions for a listing
// @Security BearerAuth
// @Param    id   path  int                 true  "Listing ID"
// @Param    req  body  AddSessionsRequest  true  "payload"
// @Success  201  {object}  map[string]int
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Router   /listings/{id}/sessions [post]
func handleAddSessions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req AddSessionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sessions, err := sessionsFromInput(req.Sessions)
		if err != nil {
			badRequest(c, "invalid start_at (RFC3339)")
			return
		}

		if err := svcs.Partners.AddSessions(c.Request.Context(), viewer(c).UserID, listingID, sessions); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"submitted": len(sessions)})
	}
}

// --- Helpers ---

// viewer must only be used behind RequireAuth.
func viewer(c *gin.Context) auth.Viewer {
	v, _ := auth.FromContext(c.Request.Context())
	return v
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseFloatDefault accepts finite numbers only.
func parseFloatDefault(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}

	return v, nil
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		rl *selections.RateLimitedError
		ve *partners.ValidationError
	)

	switch {
	// rate limiting
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(max(1, int(rl.RetryAfter.Seconds()+0.5))))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
	// not found
	case errors.Is(err, selections.ErrListingNotFound),
		errors.Is(err, listings.ErrListingNotFound),
		errors.Is(err, reviews.ErrListingNotFound),
		errors.Is(err, partners.ErrListingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "listing not found"})
	case errors.Is(err, selections.ErrSelectionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "selection not found or expired"})
	case errors.Is(err, selections.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found for listing"})
	case errors.Is(err, selections.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not available"})
	case errors.Is(err, partners.ErrPartnerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "partner not found"})
	// conflicts
	case errors.Is(err, selections.ErrSelectionConflict):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "selection is being modified, retry"})
	case errors.Is(err, reviews.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "listing already reviewed"})
	case errors.Is(err, partners.ErrAlreadyPartner):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already a partner"})
	// permissions
	case errors.Is(err, partners.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the owner"})
	// bad input
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
	case errors.Is(err, listings.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
	case errors.Is(err, listings.ErrInvalidLocation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid location"})
	case errors.Is(err, listings.ErrInvalidRadius):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
	case errors.Is(err, reviews.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rating must be between 1 and 5"})
	case errors.Is(err, reviews.ErrCommentTooLong):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "comment is too long"})
	// upstream
	case errors.Is(err, selections.ErrCatalogUnavailable),
		errors.Is(err, listings.ErrCatalogUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "catalog unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
