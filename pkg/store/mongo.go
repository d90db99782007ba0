package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DELAxGithub/wordmiro/pkg/errors"
	"github.com/DELAxGithub/wordmiro/pkg/graph"
)

const graphsCollection = "graphs"

// GraphRecord is a stored graph with its metadata, as listed by
// [MongoStore.ListGraphs].
type GraphRecord struct {
	ID        string         `bson:"_id" json:"id"`
	Name      string         `bson:"name" json:"name"`
	NodeCount int            `bson:"node_count" json:"node_count"`
	EdgeCount int            `bson:"edge_count" json:"edge_count"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
	Document  graph.Document `bson:"document" json:"-"`
}

// MongoStore persists graphs in a MongoDB collection, one document per
// graph keyed by graph ID. Server deployments use this; the CLI uses
// JSON files.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and verifies the connection
// with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "pinging mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(graphsCollection),
	}, nil
}

// SaveGraph upserts a graph under the given ID.
func (s *MongoStore) SaveGraph(ctx context.Context, id, name string, g *graph.Graph) error {
	record := GraphRecord{
		ID:        id,
		Name:      name,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		UpdatedAt: time.Now().UTC(),
		Document:  graph.Export(g),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "saving graph %s", id)
	}
	return nil
}

// LoadGraph fetches a graph by ID and rebuilds it, validating graph
// invariants on the way in.
func (s *MongoStore) LoadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	var record GraphRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "loading graph %s", id)
	}
	g, err := graph.Import(record.Document)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored graph %s is invalid", id)
	}
	return g, nil
}

// ListGraphs returns metadata for all stored graphs, most recently
// updated first. The graph documents themselves are not fetched.
func (s *MongoStore) ListGraphs(ctx context.Context) ([]GraphRecord, error) {
	opts := options.Find().
		SetProjection(bson.M{"document": 0}).
		SetSort(bson.M{"updated_at": -1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing graphs")
	}
	defer cursor.Close(ctx)

	var records []GraphRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decoding graph list")
	}
	return records, nil
}

// DeleteGraph removes a graph by ID. Deleting a missing graph returns
// GRAPH_NOT_FOUND.
func (s *MongoStore) DeleteGraph(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "deleting graph %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
