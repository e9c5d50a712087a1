/*
Package cedar implements Redis-style collections on top of an ordered
key-value engine (Bolt, Badger, or an in-memory engine for tests).

We implement:

1. Maps, field to value.

2. Sets, keyed membership without values.

3. Lists, double-ended, pushed and popped from either end without shifting
elements.

4. Sorted lists, ordered by a caller-supplied fixed-width score with
insertion order breaking ties, popped from either end.

5. Ascending sorted lists, popped from the low end only, that soft-delete
popped entries behind a boundary and reclaim them with range deletes.

# Technical Details

**Namespaces.**
All data lives in one flat ordered key space. The first byte of a key picks
its namespace: 'm' for meta records, 'd' for collection data, 's' for
database-wide bookkeeping.

**Meta records.**
Every user key that holds a collection has a meta record at 'm' | userKey:

1. Object id (8 bytes, big-endian).
2. Collection type (1 byte).
3. Live element count (8 bytes, big-endian).
4. Type-specific extra, possibly empty.

The record is deleted once its collection becomes empty, except for
ascending sorted lists whose soft-delete boundary must survive.

**Object ids.**
Each collection gets an object id on first use. Ids are never reused, even
after the collection is deleted; the next free id is persisted at
's' | "next_object_id" whenever one is handed out.

## Data keys

All data keys are 'd' | objectId (8 bytes) | suffix:

1. Maps and sets: the field or member as is.

2. Lists: a 9-byte position, a sign byte (0 negative, 1 otherwise) followed
by the 8-byte two's complement value, so byte order is numeric order.

3. Sorted lists: score | sequence (8 bytes).

**Concurrency.**
Mutations take one database-wide lock and run in a single engine write
transaction each. Reads run on an engine snapshot without locking.
*/
package cedar
