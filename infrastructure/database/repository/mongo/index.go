package mongo

import (
	"context"
	"time"

	"facegate.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 15 * time.Second

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.InsertOne(c, parsed)
	if err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return parsed, nil
}

func (repo *MongoRepository[T]) FindByID(id string, opts ...*FindOptions) (*T, error) {
	return repo.FindOneByFilter(map[string]interface{}{"_id": id}, opts...)
}

func (repo *MongoRepository[T]) FindOneByFilter(filter map[string]interface{}, opts ...*FindOptions) (*T, error) {
	c, cancel := repo.requestContext(context.Background())
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, filter, parseFindOneOptions(opts...)...).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindMany(filter map[string]interface{}, opts ...*FindOptions) (*[]T, error) {
	c, cancel := repo.requestContext(context.Background())
	defer cancel()

	cursor, err := repo.Model.Find(c, filter, parseFindOptions(opts...)...)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	results := []T{}
	if err := cursor.All(c, &results); err != nil {
		logger.Error("mongo error occured while decoding FindMany results", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return &results, nil
}

func (repo *MongoRepository[T]) UpdateByID(id string, payload *T) (int64, error) {
	return repo.UpdatePartialByID(id, payload)
}

func (repo *MongoRepository[T]) UpdatePartialByID(id string, payload interface{}) (int64, error) {
	c, cancel := repo.requestContext(context.Background())
	defer cancel()

	result, err := repo.Model.UpdateByID(c, id, bson.M{"$set": payload})
	if err != nil {
		logger.Error("mongo error occured while running UpdatePartialByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (repo *MongoRepository[T]) DeleteByID(id string) (int64, error) {
	return repo.DeleteMany(map[string]interface{}{"_id": id})
}

func (repo *MongoRepository[T]) DeleteMany(filter map[string]interface{}) (int64, error) {
	c, cancel := repo.requestContext(context.Background())
	defer cancel()

	result, err := repo.Model.DeleteMany(c, filter)
	if err != nil {
		logger.Error("mongo error occured while running DeleteMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.DeletedCount, nil
}

func (repo *MongoRepository[T]) CountDocs(filter map[string]interface{}) (int64, error) {
	c, cancel := repo.requestContext(context.Background())
	defer cancel()

	count, err := repo.Model.CountDocuments(c, filter)
	if err != nil {
		logger.Error("mongo error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return count, nil
}

func (repo *MongoRepository[T]) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

func parseFindOneOptions(opts ...*FindOptions) []*options.FindOneOptions {
	parsed := []*options.FindOneOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		o := options.FindOne()
		if opt.Projection != nil {
			o.SetProjection(*opt.Projection)
		}
		if opt.Sort != nil {
			o.SetSort(*opt.Sort)
		}
		if opt.Skip != nil {
			o.SetSkip(*opt.Skip)
		}
		parsed = append(parsed, o)
	}
	return parsed
}

func parseFindOptions(opts ...*FindOptions) []*options.FindOptions {
	parsed := []*options.FindOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		o := options.Find()
		if opt.Projection != nil {
			o.SetProjection(*opt.Projection)
		}
		if opt.Sort != nil {
			o.SetSort(*opt.Sort)
		}
		if opt.Skip != nil {
			o.SetSkip(*opt.Skip)
		}
		parsed = append(parsed, o)
	}
	return parsed
}
