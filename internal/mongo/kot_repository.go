package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
)

const collectionName = "kots"

type Config struct {
	URL      string
	Database string
}

// KOTRepository reads kitchen order tickets from MongoDB. Ticket lines are
// embedded in the ticket document.
type KOTRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	config     Config
	log        *logger.Logger
}

type kotDocument struct {
	Name            string            `bson:"_id"`
	Table           string            `bson:"restaurant_table"`
	Invoice         string            `bson:"invoice"`
	OrderStatus     string            `bson:"order_status"`
	PreparationTime int               `bson:"preparation_time"`
	Date            *string           `bson:"date,omitempty"`
	StartTimePrep   *string           `bson:"start_time_prep,omitempty"`
	Type            string            `bson:"type"`
	Items           []kotItemDocument `bson:"items"`
	CreatedAt       time.Time         `bson:"created_at"`
}

type kotItemDocument struct {
	ItemName        string `bson:"item_name"`
	Quantity        int    `bson:"quantity"`
	PreparationTime int    `bson:"preparation_time"`
	Striked         bool   `bson:"striked"`
}

func NewKOTRepository(config Config, log *logger.Logger) *KOTRepository {
	return &KOTRepository{
		config: config,
		log:    log,
	}
}

func (r *KOTRepository) Start(ctx context.Context) error {
	mongoURL := r.config.URL
	if mongoURL == "" {
		mongoURL = "mongodb://localhost:27017"
	}

	dbName := r.config.Database
	if dbName == "" {
		dbName = "pos_kitchen"
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.collection = r.db.Collection(collectionName)

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "restaurant_table", Value: 1},
			{Key: "invoice", Value: 1},
			{Key: "created_at", Value: -1},
		},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create table/invoice index: %w", err)
	}

	r.log.Info().
		Str("database", dbName).
		Str("collection", collectionName).
		Msg("Connected to MongoDB")
	return nil
}

func (r *KOTRepository) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.log.Info().Msg("Disconnected from MongoDB")
	}
	return nil
}

// ListByTableAndInvoice returns the tickets of a table and invoice, newest
// first, with their lines attached.
func (r *KOTRepository) ListByTableAndInvoice(ctx context.Context, table, invoice string) ([]*repository.KOT, error) {
	query := bson.M{
		"restaurant_table": table,
		"invoice":          invoice,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot find kots")
	}
	defer cursor.Close(ctx)

	var docs []kotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot decode kots")
	}

	kots := make([]*repository.KOT, 0, len(docs))
	for i := range docs {
		kots = append(kots, docs[i].toDomain())
	}
	return kots, nil
}

// GetItems returns the embedded lines of one ticket.
func (r *KOTRepository) GetItems(ctx context.Context, kotName string) ([]*repository.KOTItem, error) {
	var doc kotDocument
	opts := options.FindOne().SetProjection(bson.M{"items": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": kotName}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("kot", kotName)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot find kot")
	}
	doc.Name = kotName
	return doc.items(), nil
}

func (d *kotDocument) toDomain() *repository.KOT {
	return &repository.KOT{
		Name:            d.Name,
		Table:           d.Table,
		Invoice:         d.Invoice,
		OrderStatus:     d.OrderStatus,
		PreparationTime: d.PreparationTime,
		Date:            d.Date,
		StartTimePrep:   d.StartTimePrep,
		Type:            d.Type,
		Items:           d.items(),
	}
}

func (d *kotDocument) items() []*repository.KOTItem {
	items := make([]*repository.KOTItem, 0, len(d.Items))
	for i, it := range d.Items {
		items = append(items, &repository.KOTItem{
			Parent:          d.Name,
			Idx:             i + 1,
			ItemName:        it.ItemName,
			Quantity:        it.Quantity,
			PreparationTime: it.PreparationTime,
			Striked:         it.Striked,
		})
	}
	return items
}
