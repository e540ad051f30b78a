package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Hitesh-Saha/FeastAI/config"
	"github.com/Hitesh-Saha/FeastAI/internal/database"
	"github.com/Hitesh-Saha/FeastAI/internal/logging"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

const demoPassword = "testpassword123"

var demoUsers = []service.SignupRequest{
	{Name: "John Doe", Email: "john.doe@example.com", Password: demoPassword},
	{Name: "Jane Smith", Email: "jane.smith@example.com", Password: demoPassword},
	{Name: "Bob Wilson", Email: "bob.wilson@example.com", Password: demoPassword},
}

var pantries = []struct {
	ingredients []string
	preference  string
}{
	{[]string{"chicken", "rice", "garlic", "soy sauce"}, "non-veg"},
	{[]string{"chickpeas", "spinach", "coconut milk", "curry paste"}, "vegan"},
	{[]string{"pasta", "tomatoes", "basil", "parmesan"}, "veg"},
	{[]string{"salmon", "lemon", "dill", "potatoes"}, "all"},
	{[]string{"quinoa", "black beans", "corn", "avocado"}, "gluten-free"},
	{[]string{"eggs", "mushrooms", "onion", "bell pepper"}, "veg"},
	{[]string{"beef", "broccoli", "ginger", "oyster sauce"}, "non-veg"},
	{[]string{"lentils", "carrots", "celery", "cumin"}, "vegan"},
}

// seed fills a development database with demo users, generated recipes and
// ratings so the featured and history views have something to show.
func main() {
	batches := flag.Int("batches", len(pantries), "number of generation requests to send")
	count := flag.Int("count", 3, "recipes per generation request")
	pause := flag.Duration("pause", 2*time.Second, "delay between generation requests")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)
	ctx := context.Background()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	if err := database.Migrate(db.DB); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create Gemini client")
	}
	defer func() { _ = gemini.Close() }()

	auth := service.NewAuthService(db.DB, cfg.JWTSecret, log)
	images := service.NewUnsplashResolver(cfg.UnsplashAccessKey, log)
	generation := service.NewGenerationService(db.DB, gemini,
		service.NewAdapter(images, cfg.ImageLookupTimeout, log), cfg.GenerationTimeout, log)
	recipes := service.NewRecipeService(db.DB, log)

	sessions := make([]*service.Session, 0, len(demoUsers))
	for _, u := range demoUsers {
		session, err := demoSession(ctx, auth, u)
		if err != nil {
			log.WithError(err).WithField("email", u.Email).Fatal("failed to prepare demo user")
		}
		sessions = append(sessions, session)
	}

	var recipeIDs []string
	for i := 0; i < *batches; i++ {
		pantry := pantries[i%len(pantries)]
		owner := sessions[i%len(sessions)]
		batchLog := log.WithFields(logrus.Fields{"batch": i + 1, "owner": owner.Name})

		generated, err := generation.Generate(ctx, owner, service.GenerationRequest{
			Ingredients: pantry.ingredients,
			Count:       *count,
			Preference:  pantry.preference,
		})
		if err != nil {
			batchLog.WithError(err).Warn("generation failed, skipping batch")
			continue
		}
		for _, r := range generated {
			recipeIDs = append(recipeIDs, r.ID)
		}
		batchLog.WithField("recipes", len(generated)).Info("batch stored")

		if i < *batches-1 {
			time.Sleep(*pause)
		}
	}

	for _, id := range recipeIDs {
		for _, s := range sessions {
			if rand.Intn(2) == 0 {
				continue
			}
			req := service.RatingRequest{Rating: 3 + rand.Intn(3)}
			if _, err := recipes.RateRecipe(ctx, id, s.UserID, req); err != nil {
				log.WithError(err).WithField("recipe_id", id).Warn("failed to rate recipe")
			}
		}
	}

	log.WithFields(logrus.Fields{"users": len(sessions), "recipes": len(recipeIDs)}).Info("seeding complete")
}

// demoSession signs the user up, or logs in when the account already exists.
func demoSession(ctx context.Context, auth *service.AuthService, req service.SignupRequest) (*service.Session, error) {
	session, _, err := auth.Signup(ctx, req)
	if service.KindOf(err) == service.KindConflict {
		session, _, err = auth.Login(ctx, service.LoginRequest{Email: req.Email, Password: req.Password})
	}
	return session, err
}
