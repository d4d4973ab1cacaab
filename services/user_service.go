package services

import (
	"errors"
	"log"
	"time"

	"connect-four-system/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserService owns the users collection. Each handler is a single
// collection operation; there are no multi-step transactions, so
// atomicity is whatever the single operation gives ($push, $inc).
type UserService struct {
	Users *mongo.Collection
}

func NewUserService(users *mongo.Collection) *UserService {
	return &UserService{Users: users}
}

// ListUsers returns every account. Password hashes stay server-side.
func (s *UserService) ListUsers(c *fiber.Ctx) error {
	cursor, err := s.Users.Find(c.Context(), bson.M{})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list users"})
	}
	var users []models.User
	if err := cursor.All(c.Context(), &users); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to decode users"})
	}
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return c.JSON(out)
}

// RegisterUser creates an account. Name and email are both unique.
func (s *UserService) RegisterUser(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email and password are required"})
	}

	filter := bson.M{"$or": bson.A{bson.M{"name": req.Name}, bson.M{"email": req.Email}}}
	count, err := s.Users.CountDocuments(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check existing users"})
	}
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email or name already registered"})
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to hash password"})
	}
	user := models.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hash,
		Score:          req.Score,
		History:        []models.HistoryEntry{},
	}
	res, err := s.Users.InsertOne(c.Context(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register user"})
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	log.Printf("user %s registered (%s)", user.Name, user.ID.Hex())
	return c.JSON(user.Public())
}

// DeleteUser removes an account by its hex object id.
func (s *UserService) DeleteUser(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	res, err := s.Users.DeleteOne(c.Context(), bson.M{"_id": id})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete user"})
	}
	if res.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Login validates credentials. Unknown names and wrong passwords get the
// same answer so the endpoint does not leak which names exist.
func (s *UserService) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	var user models.User
	err := s.Users.FindOne(c.Context(), bson.M{"name": req.Name}).Decode(&user)
	if err != nil || !VerifyPassword(user.HashedPassword, req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid username or password"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Login successful!"})
}

// GetScore returns the bare score for one name. The game service also
// uses this endpoint as its existence probe.
func (s *UserService) GetScore(c *fiber.Ctx) error {
	var user models.User
	err := s.Users.FindOne(c.Context(), bson.M{"name": c.Params("name")}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up user"})
	}
	return c.JSON(user.Score)
}

// GetAllScores returns the score board.
func (s *UserService) GetAllScores(c *fiber.Ctx) error {
	projection := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "score": 1})
	cursor, err := s.Users.Find(c.Context(), bson.M{}, projection)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list scores"})
	}
	var users []models.User
	if err := cursor.All(c.Context(), &users); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to decode scores"})
	}
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return c.JSON(out)
}

// UpdateScore applies a score delta atomically and returns the new value.
func (s *UserService) UpdateScore(c *fiber.Ctx) error {
	var req models.ScoreUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.Users.FindOneAndUpdate(c.Context(),
		bson.M{"name": req.Name},
		bson.M{"$inc": bson.M{"score": req.Score}},
		after,
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update score"})
	}
	return c.JSON(fiber.Map{"new_score": user.Score})
}

// AddHistory appends one match record to a user's history. Entries are
// append-only; there is no update or delete for them.
func (s *UserService) AddHistory(c *fiber.Ctx) error {
	var req models.HistoryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	entry := req.HistoryEntry
	if entry.EndedAt == "" {
		entry.EndedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := s.Users.UpdateOne(c.Context(),
		bson.M{"name": req.Name},
		bson.M{"$push": bson.M{"history": entry}},
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add history"})
	}
	if res.MatchedCount != 1 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"message": "History added"})
}

// GetHistory returns a user's match history, oldest first.
func (s *UserService) GetHistory(c *fiber.Ctx) error {
	var user models.User
	err := s.Users.FindOne(c.Context(), bson.M{"name": c.Params("name")}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to look up user"})
	}
	if user.History == nil {
		user.History = []models.HistoryEntry{}
	}
	return c.JSON(user.History)
}
