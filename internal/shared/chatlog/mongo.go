package chatlog

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const colTranscripts = "chat_transcripts"

// MongoRecorder 基于 MongoDB 的转录存储
type MongoRecorder struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoRecorder 连接 MongoDB 并准备转录集合
//
// uri: 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "bookstore_gateway"
func NewMongoRecorder(uri, dbName string) (*MongoRecorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("chatlog: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("chatlog: ping failed: %w", err)
	}

	r := &MongoRecorder{
		client: client,
		col:    client.Database(dbName).Collection(colTranscripts),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: chatlog: ensure indexes failed: %v", err)
	}
	log.Printf("[chatlog/Mongo] Connected to %s", dbName)
	return r, nil
}

// Close 断开 MongoDB 连接
func (r *MongoRecorder) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRecorder) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// Record 写入一条转录
func (r *MongoRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("chatlog: insert failed: %w", err)
	}
	return nil
}

// Recent 按时间倒序返回某个会话最近的转录
func (r *MongoRecorder) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("chatlog: find failed: %w", err)
	}
	defer cur.Close(ctx)

	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("chatlog: decode failed: %w", err)
	}
	return entries, nil
}
