package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

const (
	userCollection    = "usuarios"
	counterCollection = "counters"
)

// UserRepository stores devserver accounts. Ids are sequential integers
// kept in the counters collection, matching the backend's numeric ids.
type UserRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll:     db.Collection(userCollection),
		counters: db.Collection(counterCollection),
	}
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID             int64  `bson:"_id"`
	Email          string `bson:"email"`
	PasswordHash   string `bson:"password_hash"`
	Nombre         string `bson:"nombre"`
	Apellido       string `bson:"apellido"`
	Rol            string `bson:"rol"`
	Telefono       string `bson:"telefono,omitempty"`
	Direccion      string `bson:"direccion,omitempty"`
	Empresa        *int64 `bson:"empresa,omitempty"`
	Localidad      int64  `bson:"localidad"`
	Puntos         int64  `bson:"puntos_acumulados"`
	Activo         bool   `bson:"activo"`
	FechaRegistro  int64  `bson:"fecha_registro"`
	UltimaConexion int64  `bson:"fecha_ultima_conexion,omitempty"`
}

func (r *UserRepository) Create(ctx context.Context, user *ports.StoredUser) (*ports.StoredUser, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := toMongoUser(user)
	doc.ID = id

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ports.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return fromMongoUser(doc), nil
}

func (r *UserRepository) Update(ctx context.Context, user *ports.StoredUser) (*ports.StoredUser, error) {
	doc := toMongoUser(user)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ports.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ports.ErrUserNotFound
	}
	return fromMongoUser(doc), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*ports.StoredUser, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*ports.StoredUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) List(ctx context.Context) ([]ports.StoredUser, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]ports.StoredUser, 0, len(docs))
	for _, d := range docs {
		out = append(out, *fromMongoUser(d))
	}
	return out, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*ports.StoredUser, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(mu), nil
}

func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	return counter.Seq, nil
}

func toMongoUser(u *ports.StoredUser) mongoUser {
	var last int64
	if u.FechaUltimaConexion != nil {
		last = u.FechaUltimaConexion.Unix()
	}
	return mongoUser{
		ID:             u.ID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Nombre:         u.Nombre,
		Apellido:       u.Apellido,
		Rol:            string(u.Rol),
		Telefono:       u.Telefono,
		Direccion:      u.Direccion,
		Empresa:        u.Empresa,
		Localidad:      u.Localidad,
		Puntos:         u.PuntosAcumulados,
		Activo:         u.Activo,
		FechaRegistro:  u.FechaRegistro.Unix(),
		UltimaConexion: last,
	}
}

func fromMongoUser(mu mongoUser) *ports.StoredUser {
	var last *time.Time
	if mu.UltimaConexion != 0 {
		t := unixToTime(mu.UltimaConexion)
		last = &t
	}
	return &ports.StoredUser{
		User: domain.User{
			ID:                  mu.ID,
			Email:               mu.Email,
			Nombre:              mu.Nombre,
			Apellido:            mu.Apellido,
			Rol:                 domain.Role(mu.Rol),
			Telefono:            mu.Telefono,
			Direccion:           mu.Direccion,
			Empresa:             mu.Empresa,
			Localidad:           mu.Localidad,
			PuntosAcumulados:    mu.Puntos,
			Activo:              mu.Activo,
			FechaRegistro:       unixToTime(mu.FechaRegistro),
			FechaUltimaConexion: last,
		},
		PasswordHash: mu.PasswordHash,
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
