// Package scene implements encrypted scene persistence for collaboration rooms.
//
// A save walks a fixed sequence of steps:
//
//  1. Skip when the connection already saved an identical scene (VersionCache).
//  2. Fetch the room document from the database.DocumentStore.
//  3. Not found: encrypt the local elements and create the document. A
//     creation that loses a race with another client falls through to 4.
//  4. Found: decrypt the stored elements, reconcile them with the local ones,
//     encrypt the merge and update the document.
//  5. Record the fingerprint of what was written for the connection.
//
// Only ciphertext reaches the store; the room key never leaves the process.
//
// # HTTP
//
//	GET    /rooms/:room/scene              X-Room-Key, optional X-Connection-ID
//	PUT    /rooms/:room/scene              X-Room-Key, X-Connection-ID
//	DELETE /rooms/:room/connections/:conn
package scene
