package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	ref := r.client.Collection(itemsCollection).NewDoc()
	if item.ID != "" {
		ref = r.client.Collection(itemsCollection).Doc(item.ID)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if _, err := ref.Create(ctx, item); err != nil {
		return errors.Internal("Failed to create item", err)
	}
	item.ID = ref.ID
	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Internal("Failed to get item", err)
	}
	return decodeItem(doc)
}

func (r *firestoreItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Item, error) {
	items := make([]*entity.Item, 0, len(ids))
	for i := 0; i < len(ids); i += getAllBatchSize {
		end := i + getAllBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		refs := make([]*firestore.DocumentRef, 0, end-i)
		for _, id := range ids[i:end] {
			refs = append(refs, r.client.Collection(itemsCollection).Doc(id))
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, errors.Internal("Failed to batch get items", err)
		}
		for _, doc := range docs {
			if doc == nil || !doc.Exists() {
				continue
			}
			item, err := decodeItem(doc)
			if err != nil {
				log.Printf("Error parsing item %s: %v", doc.Ref.ID, err)
				continue
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *firestoreItemRepository) Update(ctx context.Context, id string, update entity.ItemUpdate) error {
	_, err := r.client.Collection(itemsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "description", Value: update.Description},
		{Path: "category", Value: update.Category},
		{Path: "priceText", Value: update.PriceText},
		{Path: "price", Value: update.Price},
		{Path: "updatedAt", Value: update.UpdatedAt},
	})
	if err != nil {
		if IsNotFound(err) {
			return errors.NotFound("Item", err)
		}
		return errors.Internal("Failed to update item", err)
	}
	return nil
}

func (r *firestoreItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(itemsCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete item", err)
	}
	return nil
}

func (r *firestoreItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	iter := r.client.Collection(itemsCollection).
		Where("userId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var items []*entity.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while listing items for user %s: %v", ownerID, err)
			return nil, errors.Internal("Failed to list items", err)
		}

		item, err := decodeItem(doc)
		if err != nil {
			log.Printf("Error parsing item %s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *firestoreItemRepository) ListRecent(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection(itemsCollection).OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting items: %v", err)
		return nil, 0, errors.Internal("Failed to count items", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*entity.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate items", err)
		}
		item, err := decodeItem(doc)
		if err != nil {
			log.Printf("Error parsing item %s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, item)
	}
	return items, total, nil
}

// itemRecord is the read shape of an item document. Reports written by the web
// client carry reportedAt as an ISO-8601 string rather than a timestamp.
type itemRecord struct {
	OwnerID     string         `firestore:"userId"`
	Username    string         `firestore:"username"`
	Title       string         `firestore:"title"`
	Description string         `firestore:"description"`
	Category    string         `firestore:"category"`
	Price       *float64       `firestore:"price"`
	PriceText   string         `firestore:"priceText"`
	ImageURLs   []string       `firestore:"imageUrls"`
	Sold        bool           `firestore:"sold"`
	BuyerID     string         `firestore:"buyerId"`
	SoldPrice   string         `firestore:"soldPrice"`
	SoldAt      *time.Time     `firestore:"soldAt"`
	Reports     []reportRecord `firestore:"reports"`
	CreatedAt   time.Time      `firestore:"createdAt"`
	UpdatedAt   *time.Time     `firestore:"updatedAt"`
}

type reportRecord struct {
	ReporterID string      `firestore:"userId"`
	Reason     string      `firestore:"reason"`
	ReportedAt interface{} `firestore:"reportedAt"`
}

func (r itemRecord) toEntity(id string) *entity.Item {
	item := &entity.Item{
		ID:          id,
		OwnerID:     r.OwnerID,
		Username:    r.Username,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		PriceText:   r.PriceText,
		ImageURLs:   r.ImageURLs,
		Sold:        r.Sold,
		BuyerID:     r.BuyerID,
		SoldPrice:   r.SoldPrice,
		SoldAt:      r.SoldAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, report := range r.Reports {
		item.Reports = append(item.Reports, entity.Report{
			ReporterID: report.ReporterID,
			Reason:     report.Reason,
			ReportedAt: reportTime(report.ReportedAt),
		})
	}
	return item
}

// reportTime accepts a Firestore timestamp or an ISO-8601 string. Anything
// else yields the zero time.
func reportTime(value interface{}) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			log.Printf("Unparsable report time %q: %v", v, err)
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}

func decodeItem(doc *firestore.DocumentSnapshot) (*entity.Item, error) {
	var record itemRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	return record.toEntity(doc.Ref.ID), nil
}
